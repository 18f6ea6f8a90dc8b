// Command sqlquery runs a read-only SELECT against the RailSathi database and
// prints the rows as JSON.
//
//	sqlquery -q 'SELECT complain_id, complain_status FROM rail_sathi_railsathicomplain WHERE mobile_number = ?' -arg 9999999999
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yashpatel08/railsathi/internal/app"
	"github.com/yashpatel08/railsathi/internal/data/db"
	"github.com/yashpatel08/railsathi/internal/data/repos"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

type argList []string

func (l *argList) String() string { return strings.Join(*l, ",") }
func (l *argList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var (
		query   string
		args    argList
		timeout time.Duration
	)
	flag.StringVar(&query, "q", "", "SELECT or WITH statement; use ? placeholders")
	flag.Var(&args, "arg", "placeholder value (repeatable, in order)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "query timeout")
	flag.Parse()

	if strings.TrimSpace(query) == "" && flag.NArg() > 0 {
		query = strings.Join(flag.Args(), " ")
	}
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(os.Stderr, "usage: sqlquery -q 'SELECT ...' [-arg value ...]")
		os.Exit(2)
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Server.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log, db.Config{
		URL:          cfg.Database.URL,
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Name:         cfg.Database.Name,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: 1,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	queryArgs := make([]interface{}, len(args))
	for i, a := range args {
		queryArgs[i] = a
	}
	rows, err := repos.NewSQLQueryRunner(pg.DB(), log).RunSelect(dbctx.Context{Ctx: ctx}, query, queryArgs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%d row(s)\n", len(rows))
}
