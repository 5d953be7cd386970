package submission

import (
	"sort"
	"strconv"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
)

// Facts flattens the form into the fact map the rule evaluator consumes, keyed
// by the rule field vocabulary.
//
// The before-2022 creation sentinel contributes 2021 as the creation-year fact,
// the latest year consistent with the answer, so numeric criteria such as
// "annee_creation < 2022" still select those applicants. The revenue fact is
// the most recently disclosed year's figure.
func (f Form) Facts() map[string]any {
	facts := map[string]any{
		program.FieldApplicantType:   string(f.ApplicantType),
		program.FieldSecteurActivite: f.SecteurTravail,
		program.FieldRegion:          f.Region,
		program.FieldStatutJuridique: f.StatutJuridique,
	}

	if f.Sexe != "" {
		facts[program.FieldSexe] = f.Sexe
	}
	if f.Age > 0 {
		facts[program.FieldAge] = float64(f.Age)
	}
	if f.BrancheActivite != "" {
		facts[program.FieldBrancheActivite] = f.BrancheActivite
	}

	if f.AnneeCreation == CreationBefore2022 {
		facts[program.FieldAnneeCreation] = float64(2021)
	} else if year, err := strconv.Atoi(f.AnneeCreation); err == nil {
		facts[program.FieldAnneeCreation] = float64(year)
	}

	if revenue, ok := f.latestRevenue(); ok {
		facts[program.FieldChiffreAffaire] = revenue
	}
	if f.MontantInvestissement != nil {
		facts[program.FieldMontantInvestissement] = *f.MontantInvestissement
	}

	return facts
}

func (f Form) latestRevenue() (float64, bool) {
	if len(f.ChiffresAffaires) == 0 {
		return 0, false
	}
	years := make([]int, 0, len(f.ChiffresAffaires))
	for year := range f.ChiffresAffaires {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return f.ChiffresAffaires[years[0]], true
}
