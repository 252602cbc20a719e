package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/hackbite/internal/adapters/repository"
	"github.com/okian/hackbite/internal/domain/account"
	"github.com/okian/hackbite/internal/domain/matching"
	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/pkg/logger"
)

const (
	defaultSeedUsers  = 50
	defaultSeedCenter = 650
	defaultSeedSpread = 150
	seedPassword      = "hackbite-seed-pass"
	maxSeedSkills     = 4
	subScoreJitter    = 50
)

//nolint:gochecknoglobals // fixture data
var (
	firstNames = []string{"Ada", "Linus", "Grace", "Ken", "Barbara", "Dennis", "Margaret", "Rob", "Radia", "Guido"}
	lastNames  = []string{"Lovelace", "Torvalds", "Hopper", "Thompson", "Liskov", "Ritchie", "Hamilton", "Pike", "Perlman", "Rossum"}
	locations  = []string{"Berlin", "Lagos", "Toronto", "Bangalore", "Lisbon", "Remote"}
	levels     = []string{"beginner", "intermediate", "advanced"}
)

// SeedOptions controls the generated population.
type SeedOptions struct {
	Users      int
	Seed       uint64
	Center     int
	Spread     int
	Hackathons bool
}

// SeedSummary reports what a seed run wrote.
type SeedSummary struct {
	UserIDs    []int64
	Skipped    int
	Hackathons int
}

// Seed registers rated users with random skills and, optionally, sample
// hackathons. The same options always produce the same population.
// Users whose email already exists are skipped.
func Seed(ctx context.Context, store *repository.Store, opts SeedOptions) (SeedSummary, error) {
	const op = "cli.seed"
	if opts.Users < 0 || opts.Spread < 0 {
		return SeedSummary{}, fmt.Errorf("%s: users and spread must not be negative", op)
	}
	log := logger.Get().Named("seed")
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // fixture data

	skills := matching.DefaultGraph().Skills()
	slices.Sort(skills)

	accounts := account.New(store, account.WithCost(bcrypt.MinCost))
	var sum SeedSummary
	for i := range opts.Users {
		reg := model.Registration{
			Name:       firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))],
			Email:      fmt.Sprintf("seed%d.user%03d@hackbite.test", opts.Seed, i),
			Password:   seedPassword,
			Location:   locations[rng.IntN(len(locations))],
			Experience: levels[rng.IntN(len(levels))],
			Skills:     pickSkills(rng, skills),
		}
		overall := clampScore(opts.Center + rng.IntN(2*opts.Spread+1) - opts.Spread)
		git := clampScore(overall + rng.IntN(2*subScoreJitter+1) - subScoreJitter)
		resume := clampScore(overall + rng.IntN(2*subScoreJitter+1) - subScoreJitter)

		u, err := accounts.Register(ctx, reg)
		if errors.Is(err, account.ErrEmailExists) {
			sum.Skipped++
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("%s: register %s: %w", op, reg.Email, err)
		}
		_, err = store.SaveRating(ctx, model.Rating{
			UserID:     u.ID,
			GithubLink: fmt.Sprintf("https://github.com/seed-user-%d", u.ID),
			ResumeText: reg.Name + " builds software with " + joinSkills(reg.Skills) + ".",
			Scores:     model.Scores{Git: git, Resume: resume, Overall: overall},
		})
		if err != nil {
			return sum, fmt.Errorf("%s: rate user %d: %w", op, u.ID, err)
		}
		sum.UserIDs = append(sum.UserIDs, u.ID)
	}

	if opts.Hackathons {
		n, err := seedHackathons(ctx, store)
		if err != nil {
			return sum, fmt.Errorf("%s: %w", op, err)
		}
		sum.Hackathons = n
	}
	log.Info(ctx, "seed complete",
		logger.Int("users", len(sum.UserIDs)),
		logger.Int("skipped", sum.Skipped),
		logger.Int("hackathons", sum.Hackathons),
	)
	return sum, nil
}

func sampleHackathons() []model.Hackathon {
	return []model.Hackathon{
		{
			Name: "Spring Build Jam", Description: "Forty-eight hours of shipping.", Theme: "Developer tools",
			Status: model.HackathonActive, Location: "Berlin",
			StartDate: "2026-04-10", EndDate: "2026-04-12", RegistrationDeadline: "2026-04-05",
			MaxTeamSize: 4,
			Prizes:      []model.Prize{{Place: "1st", Reward: "$5,000"}, {Place: "2nd", Reward: "$2,000"}},
		},
		{
			Name: "Green Code Challenge", Description: "Software for a cooler planet.", Theme: "Climate",
			Status: model.HackathonUpcoming, Location: "Remote",
			StartDate: "2026-11-20", EndDate: "2026-11-22", RegistrationDeadline: "2026-11-15",
			MaxTeamSize: 5,
			Prizes:      []model.Prize{{Place: "1st", Reward: "$3,000"}},
		},
		{
			Name: "Health Hack", Description: "Tools for clinics and patients.", Theme: "Healthcare",
			Status: model.HackathonCompleted, Location: "Toronto",
			StartDate: "2025-09-01", EndDate: "2025-09-03", RegistrationDeadline: "2025-08-25",
			MaxTeamSize: 4,
			Prizes:      []model.Prize{{Place: "1st", Reward: "$4,000"}, {Place: "People's choice", Reward: "Mentorship"}},
		},
	}
}

// seedHackathons inserts the sample hackathons that are not present yet.
func seedHackathons(ctx context.Context, store *repository.Store) (int, error) {
	existing, err := store.ListHackathons(ctx, "")
	if err != nil {
		return 0, err
	}
	names := make(map[string]struct{}, len(existing))
	for _, h := range existing {
		names[h.Name] = struct{}{}
	}
	n := 0
	for _, h := range sampleHackathons() {
		if _, ok := names[h.Name]; ok {
			continue
		}
		if _, err := store.CreateHackathon(ctx, h); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// pickSkills draws 1 to maxSeedSkills distinct skills.
func pickSkills(rng *rand.Rand, skills []string) []string {
	n := 1 + rng.IntN(min(maxSeedSkills, len(skills)))
	idx := rng.Perm(len(skills))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = skills[j]
	}
	return out
}

func clampScore(v int) int {
	return max(matching.MinScore, min(matching.MaxScore, v))
}

func joinSkills(s []string) string {
	switch len(s) {
	case 0:
		return "curiosity"
	case 1:
		return s[0]
	}
	out := s[0]
	for _, v := range s[1 : len(s)-1] {
		out += ", " + v
	}
	return out + " and " + s[len(s)-1]
}

func newSeedCommand(flags *rootFlags) *cobra.Command {
	opts := SeedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with rated users and sample hackathons",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, flags)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			sum, err := Seed(ctx, store, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users (%d skipped) and %d hackathons into %s\n",
				len(sum.UserIDs), sum.Skipped, sum.Hackathons, cfg.DatabasePath)
			if len(sum.UserIDs) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "user ids %d..%d\n", sum.UserIDs[0], sum.UserIDs[len(sum.UserIDs)-1])
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Users, "users", "n", defaultSeedUsers, "number of users to create")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed; equal seeds give equal populations")
	cmd.Flags().IntVar(&opts.Center, "center", defaultSeedCenter, "mean overall score")
	cmd.Flags().IntVar(&opts.Spread, "spread", defaultSeedSpread, "maximum distance of an overall score from the center")
	cmd.Flags().BoolVar(&opts.Hackathons, "hackathons", true, "also create sample hackathons")
	return cmd
}
