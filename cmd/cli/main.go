// Command cli runs maintenance tasks against the configured database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/amirasaad/studentrelief/infra"
	"github.com/amirasaad/studentrelief/infra/initializer"
	"github.com/amirasaad/studentrelief/infra/migrations"
	infrarepo "github.com/amirasaad/studentrelief/infra/repository"
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/pkg/repository"
	"github.com/amirasaad/studentrelief/pkg/service/auth"
	"github.com/amirasaad/studentrelief/pkg/service/campaign"
	"github.com/amirasaad/studentrelief/pkg/service/verification"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  migrate [up|down]                                 apply or roll back the schema
  seed                                              insert demo users, profiles and a campaign
  token <email>                                     print a session token for a user
  verify <studentProfileId> approve|reject [notes]  record a verification decision
  expire-campaigns                                  deactivate campaigns past their end date`

var errUsage = errors.New("invalid usage")

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	infoColor = color.New(color.FgCyan)
	errColor  = color.New(color.FgRed, color.Bold)
)

type cli struct {
	db     *gorm.DB
	uow    repository.UnitOfWork
	tokens *auth.Service
	logger *slog.Logger
	out    io.Writer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1:]); err != nil {
		errColor.Fprintln(os.Stderr, "✗", err) //nolint:errcheck
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := initializer.SetupLogger(cfg.Log)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close() //nolint:errcheck
	}

	c := &cli{
		db:     db,
		uow:    infrarepo.NewUoW(db),
		tokens: auth.New(cfg.Auth.Jwt, logger),
		logger: logger,
		out:    os.Stdout,
	}
	return c.run(context.Background(), args)
}

func (c *cli) run(ctx context.Context, args []string) error {
	switch args[0] {
	case "migrate":
		return c.migrate(args[1:])
	case "seed":
		return c.seed(ctx)
	case "token":
		if len(args) != 2 {
			return fmt.Errorf("%w: token <email>", errUsage)
		}
		return c.token(ctx, args[1])
	case "verify":
		if len(args) < 3 {
			return fmt.Errorf("%w: verify <studentProfileId> approve|reject [notes]", errUsage)
		}
		return c.verify(ctx, args[1], args[2], strings.Join(args[3:], " "))
	case "expire-campaigns":
		return c.expireCampaigns(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func (c *cli) migrate(args []string) error {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}
	switch direction {
	case "up":
		if err := migrations.Up(c.db); err != nil {
			return err
		}
	case "down":
		if err := migrations.Down(c.db); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: migrate [up|down]", errUsage)
	}
	okColor.Fprintf(c.out, "✓ migrations %s\n", direction) //nolint:errcheck
	return nil
}

func (c *cli) token(ctx context.Context, email string) error {
	u, err := c.uow.UserRepository().GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user %s: %w", email, err)
	}
	token, err := c.tokens.GenerateToken(domain.Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return err
	}
	infoColor.Fprintf(c.out, "%s (%s)\n", u.Email, u.Role)
	fmt.Fprintln(c.out, token)
	return nil
}

func (c *cli) verify(ctx context.Context, rawID, rawDecision, notes string) error {
	studentID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("%w: student profile id: %w", errUsage, err)
	}
	decision := domain.Decision(strings.ToUpper(rawDecision))

	admins, err := c.uow.UserRepository().ListIDsByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		return errors.New("no ADMIN user exists; run seed or assign the role first")
	}

	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}
	student, err := verification.New(c.uow, c.logger).Decide(ctx, admins[0], studentID, decision, notesPtr)
	if err != nil {
		return err
	}
	okColor.Fprintf(c.out, "✓ %s is now %s\n", student.FullName(), student.Status) //nolint:errcheck
	return nil
}

func (c *cli) expireCampaigns(ctx context.Context) error {
	n, err := campaign.New(c.uow, nil, 0, c.logger).ExpireCampaigns(ctx)
	if err != nil {
		return err
	}
	okColor.Fprintf(c.out, "✓ %d campaign(s) deactivated\n", n) //nolint:errcheck
	return nil
}
