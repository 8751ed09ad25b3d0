package constant

// CreditPlan is one purchasable credit package. The table is fixed at build
// time; credits and amount for a transaction are always resolved here, never
// taken from a client payload.
type CreditPlan struct {
	Id             string
	Name           string
	Credits        int
	AmountSubunits int64 // smallest currency unit (e.g. paise)
	Description    string
}

var CreditPlans = []CreditPlan{
	{
		Id:             "Basic",
		Name:           "Basic Package",
		Credits:        100,
		AmountSubunits: 10 * 100,
		Description:    "Best for personal use",
	},
	{
		Id:             "Advanced",
		Name:           "Advanced Package",
		Credits:        500,
		AmountSubunits: 50 * 100,
		Description:    "Best for business use",
	},
	{
		Id:             "Business",
		Name:           "Business Package",
		Credits:        5000,
		AmountSubunits: 250 * 100,
		Description:    "Best for enterprise use",
	},
}

// PlanById returns the plan for the given id, or nil for unknown ids.
func PlanById(id string) *CreditPlan {
	for i := range CreditPlans {
		if CreditPlans[i].Id == id {
			return &CreditPlans[i]
		}
	}
	return nil
}

// DefaultCreditBalance is granted to every account at registration.
const DefaultCreditBalance = 5
