package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"magicsplitgpt/internal/browser"
	"magicsplitgpt/internal/collector"
	"magicsplitgpt/internal/prompt"
	"magicsplitgpt/internal/relay"
	"magicsplitgpt/internal/store"
	"magicsplitgpt/internal/strategy"
)

// app wires the pipeline components around one shared browser.
type app struct {
	mgr     *browser.Manager
	coll    *collector.Collector
	relay   *relay.Relay
	prompts *prompt.Store
	archive *store.Archive
}

// newApp builds the pipeline. The caller must call close.
func newApp() (*app, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}
	archive, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	mgr := browser.NewManager(cfg.Browser, logger)
	prompts := prompt.NewStore(cfg.Prompts.TemplateDir, logger)
	if cfg.Prompts.Watch {
		if err := prompts.Watch(); err != nil {
			logger.Warn("template watcher disabled", zap.Error(err))
		}
	}

	return &app{
		mgr:     mgr,
		coll:    collector.New(cfg, mgr, logger),
		relay:   relay.New(cfg, mgr, logger),
		prompts: prompts,
		archive: archive,
	}, nil
}

func (a *app) close() {
	a.prompts.Close()
	a.mgr.Shutdown()
	if err := a.archive.Close(); err != nil {
		logger.Warn("archive close", zap.Error(err))
	}
}

// analyze runs the full pipeline for one ticker: collect, render,
// confirm, deliver, archive.
func (a *app) analyze(ctx context.Context, strat strategy.Strategy, code string, services []string, skipConfirm bool) error {
	template, err := a.prompts.Load(strat.Key)
	if err != nil {
		return err
	}

	if err := a.mgr.Start(ctx); err != nil {
		return err
	}

	fmt.Printf("[%s] %s 데이터 수집 중...\n", strat.Title, code)
	data, err := a.coll.Collect(ctx, code)
	if err != nil {
		return fmt.Errorf("collect %s: %w", code, err)
	}

	jsonPath, err := data.SaveJSON(cfg.Storage.DataDir)
	if err != nil {
		logger.Warn("snapshot not saved", zap.Error(err))
	} else {
		fmt.Println("스냅샷 저장:", jsonPath)
	}

	rendered := prompt.Render(data, template, cfg.MagicSplit)
	fmt.Printf("수집 완료: %s (%s) 현재가 %s원, 차트 %d장\n",
		data.Name, data.Code, data.CurrentPrice, len(rendered.Attachments))

	if !skipConfirm && !confirm("AI 서비스로 전송할까요?") {
		fmt.Println("전송을 건너뜁니다.")
		return a.archiveRun(data, strat, jsonPath, nil)
	}

	results := a.relay.Dispatch(ctx, relay.Request{
		Prompt:      rendered.Text,
		Attachments: rendered.Attachments,
		Services:    services,
	})
	fmt.Print(relay.Summarize(results))

	for _, res := range results {
		if res.Response != "" {
			fmt.Printf("\n## %s 응답\n%s\n", res.Service, res.Response)
		}
	}
	return a.archiveRun(data, strat, jsonPath, results)
}

func (a *app) archiveRun(data *collector.StockData, strat strategy.Strategy, jsonPath string, results []relay.Result) error {
	err := a.archive.RecordRun(store.Run{
		ID:        data.RunID,
		StockCode: data.Code,
		StockName: data.Name,
		Strategy:  strat.Key,
		Price:     data.CurrentPrice,
		JSONPath:  jsonPath,
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}

	deliveries := make([]store.Delivery, 0, len(results))
	for _, res := range results {
		deliveries = append(deliveries, store.Delivery{
			Service: res.Service,
			OK:      res.OK,
			Message: res.Message,
			URL:     res.URL,
		})
	}
	return a.archive.RecordDeliveries(data.RunID, deliveries)
}

// confirm asks a yes/no question on stdin; plain enter means yes.
func confirm(question string) bool {
	fmt.Printf("%s (Y/n) ", question)
	return readYes(bufio.NewReader(os.Stdin))
}

func readYes(r *bufio.Reader) bool {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes"
}
