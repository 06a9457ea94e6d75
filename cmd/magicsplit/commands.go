package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"magicsplitgpt/cmd/magicsplit/ui"
	"magicsplitgpt/internal/config"
	"magicsplitgpt/internal/strategy"
)

const appVersion = "1.0.0"

// runInteractive loops the picker until the user quits.
func runInteractive(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	for ctx.Err() == nil {
		sel, err := ui.Run()
		if err != nil {
			return err
		}
		if sel.Quit {
			fmt.Println("종료합니다.")
			return nil
		}
		if err := a.analyze(ctx, sel.Strategy, sel.Code, nil, false); err != nil {
			fmt.Println("분석 실패:", err)
		}
		if !confirm("다른 종목을 분석할까요?") {
			return nil
		}
	}
	return ctx.Err()
}

func newAnalyzeCmd() *cobra.Command {
	var (
		strategyFlag string
		servicesFlag string
		yes          bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <stock-code>",
		Short: "한 종목을 수집하고 AI 서비스로 전송",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if !config.ValidStockCode(code) {
				return fmt.Errorf("invalid stock code %q: expected six digits", code)
			}
			strat, err := strategy.Resolve(strategyFlag)
			if err != nil {
				return err
			}
			var services []string
			if servicesFlag != "" {
				services = strings.Split(servicesFlag, ",")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return a.analyze(cmd.Context(), strat, code, services, yes)
		},
	}
	cmd.Flags().StringVarP(&strategyFlag, "strategy", "s", "", "strategy key or menu number (default: magic split optimization)")
	cmd.Flags().StringVar(&servicesFlag, "services", "", "comma-separated services (chatgpt,claude,gemini,gemini-api)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "send without confirmation")
	return cmd
}

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect <stock-code>",
		Short: "데이터 수집과 스냅샷 저장만 수행",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if !config.ValidStockCode(code) {
				return fmt.Errorf("invalid stock code %q: expected six digits", code)
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.mgr.Start(cmd.Context()); err != nil {
				return err
			}
			data, err := a.coll.Collect(cmd.Context(), code)
			if err != nil {
				return err
			}
			path, err := data.SaveJSON(cfg.Storage.DataDir)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s) 수집 완료\n스냅샷: %s\n차트 %d장\n",
				data.Name, data.Code, path, len(data.Screenshots))
			return nil
		},
	}
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "전략 목록과 템플릿 상태 확인",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			infos := a.prompts.List(cfg.Prompts.Strategies)
			byKey := make(map[string]string, len(infos))
			for _, info := range infos {
				status := "OK"
				if !info.Valid {
					status = info.Err
				}
				byKey[info.Key] = status
			}

			for _, s := range strategy.All() {
				status, ok := byKey[s.Key]
				if !ok {
					status = "미설정"
				}
				fmt.Printf("%s. %-26s [%s]\n   %s\n", s.MenuKey, s.Key, status, s.Description)
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "최근 분석 이력 조회",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			runs, err := a.archive.History(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("이력이 없습니다.")
				return nil
			}
			for _, run := range runs {
				fmt.Printf("%s  %s (%s)  %s  %s원\n",
					run.CreatedAt.Format("2006-01-02 15:04"),
					run.StockName, run.StockCode, run.Strategy, run.Price)
				deliveries, err := a.archive.RunDeliveries(run.ID)
				if err != nil {
					continue
				}
				for _, d := range deliveries {
					mark := "✗"
					if d.OK {
						mark = "✓"
					}
					fmt.Printf("    %s %s %s\n", mark, d.Service, d.Message)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "버전 출력",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("magicsplit", appVersion)
		},
	}
}
