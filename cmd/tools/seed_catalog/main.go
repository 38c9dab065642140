package main

import (
	"context"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/alexmejias/repo-radar/internal/catalog"
	"github.com/alexmejias/repo-radar/internal/db"
)

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	grants, err := catalog.LoadSeed()
	if err != nil {
		log.Fatalf("Failed to load seed catalog: %v", err)
	}

	store := db.NewStore(pool)
	count, err := store.UpsertGrants(ctx, grants)
	if err != nil {
		log.Fatalf("Seeding failed after %d grants: %v", count, err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Ecosystem", "Status", "Max USD"})
	for _, g := range grants {
		t.AppendRow(table.Row{g.ID, g.Name, g.Ecosystem, g.Status, g.AmountMaxUSD})
	}
	t.Render()

	log.Printf("Seeded %d grants", count)
}
