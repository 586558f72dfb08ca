package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/boardkit/api/internal/infra/postgres"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/domain/user"
	"github.com/boardkit/api/pkg/domain/workspace"
	"github.com/boardkit/api/pkg/password"
)

// seedFile is the YAML layout consumed by the seed command.
type seedFile struct {
	Users []struct {
		Email    string `yaml:"email"`
		Name     string `yaml:"name"`
		Password string `yaml:"password"`
	} `yaml:"users"`
	Workspaces []struct {
		Name   string `yaml:"name"`
		Owner  string `yaml:"owner"` // user email
		Boards []struct {
			Name    string `yaml:"name"`
			Lists   []string `yaml:"lists"`
			Members []struct {
				Email string `yaml:"email"`
				Role  string `yaml:"role"`
			} `yaml:"members"`
		} `yaml:"boards"`
	} `yaml:"workspaces"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load users, workspaces and boards from a YAML file",
	Long: `Seed reads a YAML file describing users, workspaces, boards and
memberships and creates them. Existing users (matched by email) are
reused, so running seed twice against the same database is safe for
the user set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}

		var sf seedFile
		if err := yaml.Unmarshal(raw, &sf); err != nil {
			return fmt.Errorf("failed to parse seed file: %w", err)
		}

		_, db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		return runSeed(cmd.Context(), db, &sf)
	},
}

func runSeed(ctx context.Context, db *postgres.DB, sf *seedFile) error {
	log := newLogger()
	users := postgres.NewUserRepository(db)
	workspaces := postgres.NewWorkspaceRepository(db)
	boards := postgres.NewBoardRepository(db)
	hasher := password.New()

	// Users first; everything else references them by email.
	byEmail := make(map[string]shared.ID)
	for _, su := range sf.Users {
		existing, err := users.GetByEmail(ctx, su.Email)
		if err == nil {
			byEmail[su.Email] = existing.ID()
			log.Debug("user already exists", "email", su.Email)
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("failed to look up user %s: %w", su.Email, err)
		}

		hash, err := hasher.Hash(su.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", su.Email, err)
		}
		u, err := user.New(su.Email, su.Name, hash)
		if err != nil {
			return fmt.Errorf("invalid user %s: %w", su.Email, err)
		}
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to create user %s: %w", su.Email, err)
		}
		byEmail[su.Email] = u.ID()
		log.Info("user created", "email", su.Email)
	}

	for _, sw := range sf.Workspaces {
		ownerID, ok := byEmail[sw.Owner]
		if !ok {
			return fmt.Errorf("workspace %q: owner %s not in users list", sw.Name, sw.Owner)
		}
		w, err := workspace.New(sw.Name, ownerID)
		if err != nil {
			return fmt.Errorf("invalid workspace %q: %w", sw.Name, err)
		}
		if err := workspaces.Create(ctx, w); err != nil {
			return fmt.Errorf("failed to create workspace %q: %w", sw.Name, err)
		}
		log.Info("workspace created", "name", sw.Name)

		for _, sb := range sw.Boards {
			b, err := board.NewBoard(w.ID(), sb.Name, ownerID)
			if err != nil {
				return fmt.Errorf("invalid board %q: %w", sb.Name, err)
			}
			if err := boards.Create(ctx, b); err != nil {
				return fmt.Errorf("failed to create board %q: %w", sb.Name, err)
			}
			log.Info("board created", "name", sb.Name)

			for i, name := range sb.Lists {
				l, err := board.NewList(b.ID(), name, i)
				if err != nil {
					return fmt.Errorf("invalid list %q: %w", name, err)
				}
				if err := boards.CreateList(ctx, l); err != nil {
					return fmt.Errorf("failed to create list %q: %w", name, err)
				}
			}

			for _, sm := range sb.Members {
				memberID, ok := byEmail[sm.Email]
				if !ok {
					return fmt.Errorf("board %q: member %s not in users list", sb.Name, sm.Email)
				}
				role, ok := board.ParseRole(sm.Role)
				if !ok {
					return fmt.Errorf("board %q: invalid role %q for %s", sb.Name, sm.Role, sm.Email)
				}
				invitedBy := ownerID
				m, err := board.NewMembership(b.ID(), memberID, role, &invitedBy)
				if err != nil {
					return fmt.Errorf("invalid membership for %s: %w", sm.Email, err)
				}
				if err := boards.CreateMembership(ctx, m); err != nil {
					return fmt.Errorf("failed to add %s to board %q: %w", sm.Email, sb.Name, err)
				}
			}
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
