package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rategrid/internal/core/matrix"
	"rategrid/internal/modkit"
	"rategrid/internal/platform/config"
	perr "rategrid/internal/platform/errors"
	"rategrid/internal/platform/logger"
	"rategrid/internal/platform/store"
	"rategrid/internal/services/api/commissions/domain"

	commmod "rategrid/internal/services/api/commissions/module"
	commsvc "rategrid/internal/services/api/commissions/service"
)

func main() {
	var (
		fFile    = flag.String("file", "", "bulk draft json file (- for stdin)")
		fProduct = flag.String("product", "", "product id the rates belong to")
		fZero    = flag.String("zero", "", "zero-rate cells: ask, include or omit (default COMMISSIONS_BULK_ZERO or ask)")
		fConc    = flag.Int("concurrency", 0, "parallel creates (default COMMISSIONS_BULK_CONCURRENCY)")
		fUp      = flag.String("upstream", "", "remote commissions api base url (default COMMISSIONS_UPSTREAM_URL)")
	)
	flag.Parse()

	l := logger.Get()
	if *fFile == "" || *fProduct == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := config.New()
	opts := commmod.FromConfig(root)
	zero := strings.ToLower(*fZero)
	if zero == "" {
		zero = root.Prefix("COMMISSIONS_").MayEnum("BULK_ZERO", "ask", "ask", "include", "omit")
	}
	switch zero {
	case "ask", "include", "omit":
	default:
		l.Fatal().Str("zero", zero).Msg("zero must be ask, include or omit")
	}
	if err := checkZeroSource(zero, *fFile); err != nil {
		l.Fatal().Err(err).Msg("zero-rate decision cannot be read")
	}

	draft, err := openDraft(*fFile)
	if err != nil {
		l.Fatal().Err(err).Str("file", *fFile).Msg("draft file rejected")
	}
	if *fUp != "" {
		opts.UpstreamURL = *fUp
	}
	if *fConc > 0 {
		opts.BulkConcurrency = *fConc
	}

	deps := modkit.Deps{Cfg: root, Log: *l}
	if opts.UpstreamURL == "" {
		dbCfg := root.Prefix("SERVICE_PGSQL_")
		st, err := store.Open(ctx, store.Config{
			AppName: "rategrid-bulk",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         dbCfg.MustString("DBURL"),
				MaxConns:    int32(max(2, opts.BulkConcurrency)),
				SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
				LogSQL:      dbCfg.MayBool("LOG_SQL", false),

				ConnectRetries: dbCfg.MayInt("CONNECT_RETRIES", 20),
				PingTimeout:    dbCfg.MayDuration("PING_TIMEOUT", 3*time.Second),
			},
		}, store.WithLogger(*l))
		if err != nil {
			l.Fatal().Err(err).Msg("store.Open failed")
		}
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()
		deps.PG = st.PG
	}

	svc := commsvc.New(commmod.NewStore(deps, opts), commmod.NewAudit(deps), commsvc.Options{
		BulkConcurrency: opts.BulkConcurrency,
		SessionTTL:      opts.SessionTTL,
	})
	sess, err := svc.Open(ctx, *fProduct)
	if err != nil {
		l.Fatal().Err(err).Msg("load product commissions failed")
	}
	if err := sess.UseDraft(draft); err != nil {
		l.Fatal().Err(err).Msg("draft rejected")
	}

	sum, err := sess.CommitDraft(ctx, zeroPrompt(zero, os.Stdin, os.Stderr))
	if sum.Requested > 0 || sum.Refreshed {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(sum)
	}
	if err != nil {
		l.Fatal().Err(err).Msg("bulk commit failed")
	}
	if sum.Failed > 0 {
		os.Exit(1)
	}
}

func openDraft(path string) (*matrix.Draft, error) {
	if path == "-" {
		return readDraft(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readDraft(f)
}

// checkZeroSource rejects asking on stdin when the draft itself is read from stdin
func checkZeroSource(mode, file string) error {
	if mode == "ask" && file == "-" {
		return perr.InvalidArgf("-file - reads stdin, so -zero must be include or omit")
	}
	return nil
}

// zeroPrompt answers the zero-rate question from the -zero flag, asking on the terminal for "ask"
func zeroPrompt(mode string, in io.Reader, out io.Writer) domain.ZeroPrompt {
	return func(_ context.Context, zero int) (bool, error) {
		switch mode {
		case "include":
			return true, nil
		case "omit":
			return false, nil
		}
		_, _ = fmt.Fprintf(out, "%d cells have a zero rate. Create them anyway? [y/N] ", zero)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		if err == io.EOF && line == "" {
			return false, perr.InvalidArgf("no answer to the zero-rate prompt")
		}
		ans := strings.ToLower(strings.TrimSpace(line))
		return ans == "y" || ans == "yes", nil
	}
}
