// Command bankctl runs the interactive banking session on the terminal.
// By default state lives only for the session; pass -db to keep it in a
// sqlite file across runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/example/bankledger/internal/console"
	"github.com/example/bankledger/internal/ledger"
	"github.com/example/bankledger/internal/statement"
	"github.com/example/bankledger/pkg/audit"
)

func main() {
	dbPath := flag.String("db", "", "sqlite database path (empty for in-memory)")
	flag.Parse()

	var store ledger.Store = ledger.NewMemoryStore()
	if *dbPath != "" {
		s, err := ledger.OpenSQLite(*dbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	}

	svc := ledger.NewService(store, audit.NewTrail())
	engine := statement.NewEngine(store)

	session := console.New(os.Stdin, os.Stdout, svc, engine)
	if err := session.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
