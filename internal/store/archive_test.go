package store

import (
	"path/filepath"
	"testing"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "sub", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestRecordRunAndHistory(t *testing.T) {
	a := openTestArchive(t)

	runs := []Run{
		{ID: "r1", StockCode: "005930", StockName: "삼성전자", Strategy: "magic_split_optimization", Price: "75300", JSONPath: "data/005930_a.json"},
		{ID: "r2", StockCode: "000660", StockName: "SK하이닉스", Strategy: "valuation_analysis", Price: "198000"},
	}
	for _, r := range runs {
		if err := a.RecordRun(r); err != nil {
			t.Fatalf("RecordRun(%s): %v", r.ID, err)
		}
	}

	got, err := a.History(10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("history has %d runs, want 2", len(got))
	}
	// Newest first; identical timestamps fall back to id order.
	if got[0].ID != "r2" {
		t.Errorf("first run = %s, want r2", got[0].ID)
	}
	if got[1].StockName != "삼성전자" {
		t.Errorf("stock name = %s", got[1].StockName)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}

func TestHistoryLimit(t *testing.T) {
	a := openTestArchive(t)
	for _, id := range []string{"r1", "r2", "r3"} {
		if err := a.RecordRun(Run{ID: id, StockCode: "005930", StockName: "삼성전자", Strategy: "s"}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := a.History(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("limit 2 returned %d runs", len(got))
	}
}

func TestRecordAndQueryDeliveries(t *testing.T) {
	a := openTestArchive(t)
	if err := a.RecordRun(Run{ID: "r1", StockCode: "005930", StockName: "삼성전자", Strategy: "s"}); err != nil {
		t.Fatal(err)
	}

	deliveries := []Delivery{
		{Service: "chatgpt", OK: true, Message: "전송 완료", URL: "https://chat.openai.com/c/1"},
		{Service: "claude", OK: false, Message: "composer not found"},
	}
	if err := a.RecordDeliveries("r1", deliveries); err != nil {
		t.Fatalf("RecordDeliveries: %v", err)
	}

	got, err := a.RunDeliveries("r1")
	if err != nil {
		t.Fatalf("RunDeliveries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(got))
	}
	if !got[0].OK || got[0].Service != "chatgpt" {
		t.Errorf("first delivery = %+v", got[0])
	}
	if got[1].OK {
		t.Error("failed delivery reported ok")
	}
}

func TestRunDeliveriesEmpty(t *testing.T) {
	a := openTestArchive(t)
	got, err := a.RunDeliveries("nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no deliveries, got %d", len(got))
	}
}

func TestDuplicateRunIDRejected(t *testing.T) {
	a := openTestArchive(t)
	run := Run{ID: "r1", StockCode: "005930", StockName: "삼성전자", Strategy: "s"}
	if err := a.RecordRun(run); err != nil {
		t.Fatal(err)
	}
	if err := a.RecordRun(run); err == nil {
		t.Error("duplicate run id accepted")
	}
}
