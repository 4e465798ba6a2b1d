package simulation

import (
	"math/rand"

	"github.com/bankops/salessim/pkg/persona"
)

// Assignment binds one sales representative to the companies they will visit.
type Assignment struct {
	Sales     *persona.SalesPersona
	Companies []*persona.CompanyPersona
}

// AssignCompanies gives each sales persona one or two companies sampled from
// the pool without replacement per representative. The same company may be
// visited by different representatives. Deterministic for a given rng state.
func AssignCompanies(
	sales []*persona.SalesPersona,
	companies []*persona.CompanyPersona,
	rng *rand.Rand,
) []Assignment {
	assignments := make([]Assignment, 0, len(sales))
	for _, rep := range sales {
		count := 1
		if len(companies) > 1 && rng.Intn(2) == 1 {
			count = 2
		}

		picked := rng.Perm(len(companies))[:count]
		assigned := make([]*persona.CompanyPersona, 0, count)
		for _, idx := range picked {
			assigned = append(assigned, companies[idx])
		}
		assignments = append(assignments, Assignment{Sales: rep, Companies: assigned})
	}
	return assignments
}
