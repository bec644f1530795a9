package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/amirasaad/speibank/infra"
	"github.com/amirasaad/speibank/infra/initializer"
	"github.com/amirasaad/speibank/pkg/app"
	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/pkg/domain/money"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/amirasaad/speibank/pkg/service/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  migrate
  open <clabe> <email> [opening_balance]
  token <account_id>
  balance <account_id>
  transfer <sender_id> <recipient_clabe> <amount> [recipient_name]
  status <tracking_code>
  sync-inbound <account_id>
  approve <approver_id> <pending_id>
  reconcile [resolve <tracking_code>]`

var errUsage = errors.New(usage)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Println("Failed to load configuration:", err)
		os.Exit(1)
	}
	deps, db, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		fmt.Println("Failed to initialize dependencies:", err)
		os.Exit(1)
	}
	if db == nil && os.Args[1] != "token" {
		fmt.Println("DATABASE_URL is not set; changes will not outlive this process")
	}

	if os.Args[1] == "migrate" {
		if db == nil {
			fmt.Println("Nothing to migrate without DATABASE_URL")
			os.Exit(1)
		}
		if err := infra.RunMigrations(db, deps.Logger); err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
		fmt.Println("Migrations applied")
		return
	}

	services := app.New(deps, cfg)
	if err := runCommand(context.Background(), services, os.Args[1:], os.Stdout); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	need := func(n int) error {
		if len(args) < n {
			return errUsage
		}
		return nil
	}

	switch args[0] {
	case "open":
		if err := need(3); err != nil {
			return err
		}
		balance := decimal.Zero
		if len(args) > 3 {
			b, err := decimal.NewFromString(args[3])
			if err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}
			balance = b
		}
		acc, err := a.AccountService.Open(ctx, dto.AccountCreate{Clabe: args[1], Email: args[2], Balance: balance})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Account opened: ID=%s, CLABE=%s, Balance=%s\n", acc.ID, acc.Clabe, money.Format(acc.Balance))

	case "token":
		if err := need(2); err != nil {
			return err
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}
		token, err := a.AuthService.GenerateToken(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, token)

	case "balance":
		if err := need(2); err != nil {
			return err
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}
		balance, err := a.AccountService.Balance(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Balance: %s\n", money.Format(balance))

	case "transfer":
		if err := need(4); err != nil {
			return err
		}
		sender, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid sender id: %w", err)
		}
		amount, err := decimal.NewFromString(args[3])
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		name := "Beneficiario"
		if len(args) > 4 {
			name = args[4]
		}
		res, err := a.TransferService.Execute(ctx, transfer.Request{
			SenderID:         sender,
			RecipientName:    name,
			RecipientAccount: args[2],
			AccountType:      transfer.AccountTypeClabe,
			Amount:           amount,
			Concept:          "cli",
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Transfer %s: tracking=%s commission=%s balance=%s\n",
			res.State, res.TrackingCode, money.Format(res.Commission), money.Format(res.NewBalance))

	case "status":
		if err := need(2); err != nil {
			return err
		}
		report, err := a.SettlementService.RefreshStatus(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wire %s: %s", report.TrackingCode, report.Outcome)
		if report.Reason != "" {
			fmt.Fprintf(out, " (%s)", report.Reason)
		}
		fmt.Fprintln(out)

	case "sync-inbound":
		if err := need(2); err != nil {
			return err
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid account id: %w", err)
		}
		report, err := a.SettlementService.SyncInbound(ctx, id)
		if report != nil {
			fmt.Fprintf(out, "Booked %d, skipped %d, rejected %d, credited %s\n",
				report.Booked, report.Skipped, report.Rejected, money.Format(report.Credited))
		}
		return err

	case "approve":
		if err := need(3); err != nil {
			return err
		}
		approver, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid approver id: %w", err)
		}
		pendingID, err := uuid.Parse(args[2])
		if err != nil {
			return fmt.Errorf("invalid pending id: %w", err)
		}
		res, err := a.PendingService.Approve(ctx, approver, pendingID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Approved: tracking=%s balance=%s\n", res.TrackingCode, money.Format(res.NewBalance))

	case "reconcile":
		if len(args) == 3 && args[1] == "resolve" {
			if !a.Reconciliation.Resolve(args[2]) {
				return fmt.Errorf("%s is not queued for reconciliation", args[2])
			}
			fmt.Fprintf(out, "Resolved %s\n", args[2])
			return nil
		}
		if len(args) != 1 {
			return errUsage
		}
		pending := a.Reconciliation.Pending()
		if len(pending) == 0 {
			fmt.Fprintln(out, "Nothing to reconcile")
			return nil
		}
		for _, p := range pending {
			fmt.Fprintf(out, "%s sender=%s amount=%s: %s\n", p.TrackingCode, p.SenderID, money.Format(p.Amount), p.Reason)
		}

	default:
		return errUsage
	}
	return nil
}
