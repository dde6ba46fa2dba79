// Command dump_store prints the persisted chain state from a sqlite store
// as JSON, for debugging a device database pulled off a test install.
//
// Usage:
//
//	go run ./scripts/dump_store.go -db data/app.db -journal 10
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Rusith21/Autism-parent-app/internal/domain"
	"github.com/Rusith21/Autism-parent-app/internal/journal"
	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
	"github.com/Rusith21/Autism-parent-app/internal/store"
	"github.com/Rusith21/Autism-parent-app/internal/store/gormkv"
)

type journalLine struct {
	ID         string          `json:"id"`
	ActivityID string          `json:"activity_id"`
	Answers    json.RawMessage `json:"answers"`
	Top1ID     string          `json:"top1_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type storeReport struct {
	Chain    domain.Chain  `json:"chain"`
	Finished []string      `json:"finished"`
	Journal  []journalLine `json:"journal,omitempty"`
}

func main() {
	dbPath := flag.String("db", "data/app.db", "sqlite database file")
	journalN := flag.Int("journal", 10, "journal records to include (0 disables)")
	flag.Parse()

	if err := run(*dbPath, *journalN); err != nil {
		fmt.Fprintf(os.Stderr, "dump_store: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath string, journalN int) error {
	ctx := context.Background()
	log := logger.NewNop()

	kv, err := gormkv.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	cs := store.NewChainStore(kv, log)

	chain, err := cs.LoadChain(ctx)
	if err != nil {
		return err
	}
	finished, err := cs.LoadFinished(ctx)
	if err != nil {
		return err
	}

	report := storeReport{Chain: chain, Finished: finished}
	if journalN > 0 {
		rec, err := journal.NewGormRecorder(kv.DB(), log)
		if err != nil {
			return err
		}
		records, err := rec.Recent(ctx, journalN)
		if err != nil {
			return err
		}
		for _, r := range records {
			report.Journal = append(report.Journal, journalLine{
				ID:         r.ID.String(),
				ActivityID: r.ActivityID,
				Answers:    json.RawMessage(r.Answers),
				Top1ID:     r.Top1ID,
				CreatedAt:  r.CreatedAt,
			})
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
