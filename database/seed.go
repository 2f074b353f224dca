package database

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"businessboard/backend/domain"
	"businessboard/backend/models"
)

var (
	seedBusinessTypes = []string{
		"Technology", "Retail", "Finance", "Healthcare", "Education",
		"Marketing", "Automotive", "Hospitality", "Manufacturing", "Real Estate",
	}
	seedStates = []string{
		"New", "In Negotiation", "Under Review", "Pending Approval", "Approved",
		"On Hold", "In Revision", "Rejected", "Canceled", "Closed",
	}
	firstNames   = []string{"Ana", "Bruno", "Carla", "Diego", "Elisa", "Fabio", "Gina", "Hugo", "Iris", "Joao"}
	lastNames    = []string{"Silva", "Costa", "Santos", "Pereira", "Lima", "Almeida", "Ferreira", "Rocha"}
	companyHeads = []string{"Acme", "Globex", "Initech", "Umbrella", "Stark", "Wayne", "Hooli", "Vandelay", "Soylent", "Tyrell"}
	companyTails = []string{"Corp", "Group", "Holdings", "Labs", "Partners", "Industries", "Systems", "Ltd"}
)

type SeedOptions struct {
	Users      int // generated users besides the default one
	Businesses int
	// PasswordHash is stored for every seeded user.
	PasswordHash string
}

// Seed fills an empty store with demo data. A store that already has
// business types is left untouched.
func Seed(ctx context.Context, st domain.Store, rnd *rand.Rand, opts SeedOptions) error {
	existing, err := st.BusinessTypes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("seed skipped: store already has data")
		return nil
	}

	users := []models.User{}
	u, err := st.InsertUser(ctx, models.User{Name: "John Doe", Email: "johndoe@example.com", PasswordHash: opts.PasswordHash})
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	users = append(users, u)
	for i := 0; i < opts.Users; i++ {
		first, last := firstNames[rnd.IntN(len(firstNames))], lastNames[rnd.IntN(len(lastNames))]
		email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1)
		u, err := st.InsertUser(ctx, models.User{Name: first + " " + last, Email: email, PasswordHash: opts.PasswordHash})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", email, err)
		}
		users = append(users, u)
	}

	types := make([]models.BusinessType, 0, len(seedBusinessTypes))
	for _, name := range seedBusinessTypes {
		t, err := st.InsertBusinessType(ctx, name)
		if err != nil {
			return fmt.Errorf("seed business type %q: %w", name, err)
		}
		types = append(types, t)
	}

	states := make([]models.State, 0, len(seedStates))
	for _, name := range seedStates {
		s, err := st.InsertState(ctx, name)
		if err != nil {
			return fmt.Errorf("seed state %q: %w", name, err)
		}
		states = append(states, s)
	}

	for i := 0; i < opts.Businesses; i++ {
		cents := 100000 + rnd.Int64N(900001) // 1000.00 .. 10000.00
		b := models.Business{
			Name:           companyHeads[rnd.IntN(len(companyHeads))] + " " + companyTails[rnd.IntN(len(companyTails))],
			BusinessTypeID: types[rnd.IntN(len(types))].ID,
			UserID:         users[rnd.IntN(len(users))].ID,
			StateID:        states[rnd.IntN(len(states))].ID,
			Value:          models.NewMoney(decimal.New(cents, -2)),
		}
		if _, err := st.InsertBusiness(ctx, b); err != nil {
			return fmt.Errorf("seed business %d: %w", i+1, err)
		}
	}
	log.WithFields(log.Fields{
		"users":          len(users),
		"business_types": len(types),
		"states":         len(states),
		"businesses":     opts.Businesses,
	}).Info("seed complete")
	return nil
}
