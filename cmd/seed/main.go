package main

import (
	"context"
	"time"

	"go-inspect/internal/config"
	"go-inspect/internal/database"
	"go-inspect/internal/features/checklist"
	"go-inspect/internal/features/machine"
	"go-inspect/internal/features/machinetype"
	"go-inspect/internal/features/state"
	"go-inspect/internal/features/user"
	"go-inspect/internal/logger"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Seed loads a demo catalog: one machine type with states and a checklist,
// a machine, and an administrator plus a mechanic account.
func Seed(
	lc fx.Lifecycle,
	typeRepo machinetype.MachineTypeRepository,
	machineRepo machine.MachineRepository,
	stateRepo state.StateRepository,
	checklistRepo checklist.ChecklistRepository,
	userService user.UserService,
	log *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						log.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				log.Info("Seeding demo data")

				mt := &machinetype.MachineType{Name: "Forklift"}
				if err := typeRepo.Create(ctx, mt); err != nil {
					log.Error("seed machine type", zap.Error(err))
					return
				}

				m := &machine.Machine{
					MachineTypeID: mt.ID,
					Client:        "Acme Logistics",
					SerialNumber:  "FLT-0001",
					Status:        machine.StatusActive,
				}
				if err := machineRepo.Create(ctx, m); err != nil {
					log.Error("seed machine", zap.Error(err))
					return
				}

				for _, name := range []string{"OK", "Needs repair", "Not applicable"} {
					st := &state.PossibleState{Name: name, MachineTypeID: mt.ID}
					if err := stateRepo.Create(ctx, st); err != nil {
						log.Error("seed state", zap.Error(err))
						return
					}
				}

				now := time.Now().UTC()
				cl := &checklist.Checklist{
					Name:          "Forklift periodic inspection",
					MachineTypeID: mt.ID,
					Version:       "1.0",
					Active:        true,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if err := checklistRepo.Create(ctx, cl); err != nil {
					log.Error("seed checklist", zap.Error(err))
					return
				}

				groups := []struct {
					name  string
					items []struct {
						name      string
						mandatory bool
					}
				}{
					{"Hydraulics", []struct {
						name      string
						mandatory bool
					}{
						{"Lift cylinder seals", true},
						{"Hose condition", true},
						{"Fluid level", false},
					}},
					{"Safety", []struct {
						name      string
						mandatory bool
					}{
						{"Horn", true},
						{"Seat belt", true},
						{"Lights", false},
					}},
				}
				for gi, g := range groups {
					grp := &checklist.Group{ChecklistID: cl.ID, Name: g.name, Rank: gi + 1}
					if err := checklistRepo.CreateGroup(ctx, grp); err != nil {
						log.Error("seed checklist group", zap.Error(err))
						return
					}
					for ii, it := range g.items {
						item := &checklist.Item{
							GroupID:   grp.ID,
							Name:      it.name,
							Rank:      ii + 1,
							Mandatory: it.mandatory,
						}
						if err := checklistRepo.CreateItem(ctx, item); err != nil {
							log.Error("seed checklist item", zap.Error(err))
							return
						}
					}
				}

				accounts := []user.CreateUserInput{
					{Email: "admin@example.com", FirstName: "Ada", LastName: "Admin", Role: user.RoleAdministrator, Password: "admin1234"},
					{Email: "mechanic@example.com", FirstName: "Max", LastName: "Mechanic", Role: user.RoleMechanic, Password: "mechanic1234"},
				}
				for _, in := range accounts {
					if _, err := userService.Create(ctx, in); err != nil {
						log.Warn("seed user", zap.String("email", in.Email), zap.Error(err))
					}
				}

				log.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,

			machinetype.NewMachineTypeRepository,
			machine.NewMachineRepository,
			state.NewStateRepository,
			checklist.NewChecklistRepository,
			user.NewUserRepository,
			user.NewUserService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
