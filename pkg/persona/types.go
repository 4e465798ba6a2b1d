package persona

import "fmt"

// ProductType identifies a financial product a sales representative can pitch.
type ProductType string

const (
	ProductLoan       ProductType = "loan"
	ProductInvestment ProductType = "investment"
	ProductDeposit    ProductType = "deposit"
	ProductInsurance  ProductType = "insurance"
	ProductOther      ProductType = "other"
)

// AllProductTypes returns the closed set of product types in stable order.
func AllProductTypes() []ProductType {
	return []ProductType{
		ProductLoan,
		ProductInvestment,
		ProductDeposit,
		ProductInsurance,
		ProductOther,
	}
}

// Valid reports whether p is a known product type.
func (p ProductType) Valid() bool {
	switch p {
	case ProductLoan, ProductInvestment, ProductDeposit, ProductInsurance, ProductOther:
		return true
	}
	return false
}

// ExperienceLevel is the ordered seniority tier of a sales representative.
type ExperienceLevel string

const (
	ExperienceJunior  ExperienceLevel = "junior"  // years 1-3
	ExperienceMiddle  ExperienceLevel = "middle"  // years 4-7
	ExperienceSenior  ExperienceLevel = "senior"  // years 8-15
	ExperienceVeteran ExperienceLevel = "veteran" // years 16+
)

// Valid reports whether e is a known experience level.
func (e ExperienceLevel) Valid() bool {
	switch e {
	case ExperienceJunior, ExperienceMiddle, ExperienceSenior, ExperienceVeteran:
		return true
	}
	return false
}

// SalesTrait is a personality trait of a sales representative.
type SalesTrait string

const (
	TraitAggressive    SalesTrait = "aggressive"
	TraitCautious      SalesTrait = "cautious"
	TraitFriendly      SalesTrait = "friendly"
	TraitProfessional  SalesTrait = "professional"
	TraitInexperienced SalesTrait = "inexperienced"
	TraitKnowledgeable SalesTrait = "knowledgeable"
	TraitImpatient     SalesTrait = "impatient"
	TraitPatient       SalesTrait = "patient"
)

// Valid reports whether t is a known sales trait.
func (t SalesTrait) Valid() bool {
	switch t {
	case TraitAggressive, TraitCautious, TraitFriendly, TraitProfessional,
		TraitInexperienced, TraitKnowledgeable, TraitImpatient, TraitPatient:
		return true
	}
	return false
}

// CompanyTrait is a personality trait of a company or its contact person.
type CompanyTrait string

const (
	CompanyAuthoritative  CompanyTrait = "authoritative"
	CompanyCooperative    CompanyTrait = "cooperative"
	CompanySkeptical      CompanyTrait = "skeptical"
	CompanyTrusting       CompanyTrait = "trusting"
	CompanyDetailOriented CompanyTrait = "detail_oriented"
	CompanyBigPicture     CompanyTrait = "big_picture"
	CompanyImpulsive      CompanyTrait = "impulsive"
	CompanyAnalytical     CompanyTrait = "analytical"
	CompanyCautious       CompanyTrait = "cautious"
)

// Valid reports whether t is a known company trait.
func (t CompanyTrait) Valid() bool {
	switch t {
	case CompanyAuthoritative, CompanyCooperative, CompanySkeptical, CompanyTrusting,
		CompanyDetailOriented, CompanyBigPicture, CompanyImpulsive, CompanyAnalytical,
		CompanyCautious:
		return true
	}
	return false
}

// SalesStatus is the overall outcome classification of a pairing.
type SalesStatus string

const (
	StatusInitial    SalesStatus = "initial"
	StatusInProgress SalesStatus = "in_progress"
	StatusSuccess    SalesStatus = "success"
	StatusFailed     SalesStatus = "failed"
	StatusPending    SalesStatus = "pending"
)

// Terminal reports whether the status can no longer change.
func (s SalesStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// ResponseType classifies a counterparty's reaction to one proposal.
type ResponseType string

const (
	ResponseAcceptance ResponseType = "acceptance"
	ResponsePositive   ResponseType = "positive"
	ResponseQuestion   ResponseType = "question"
	ResponseNeutral    ResponseType = "neutral"
	ResponseRejection  ResponseType = "rejection"
)

// Rank orders response types from rejection (0) to acceptance (4). Used to
// verify the classification ladder is monotonic in the composite score.
func (r ResponseType) Rank() int {
	switch r {
	case ResponseAcceptance:
		return 4
	case ResponsePositive:
		return 3
	case ResponseQuestion:
		return 2
	case ResponseNeutral:
		return 1
	case ResponseRejection:
		return 0
	}
	return -1
}

// Favorable reports whether the response advances a negotiation.
func (r ResponseType) Favorable() bool {
	return r == ResponsePositive || r == ResponseAcceptance
}

// InterestLevel buckets a 0-100 interest score.
type InterestLevel string

const (
	InterestVeryHigh InterestLevel = "very_high" // 80-100
	InterestHigh     InterestLevel = "high"      // 60-79
	InterestModerate InterestLevel = "moderate"  // 40-59
	InterestLow      InterestLevel = "low"       // 20-39
	InterestVeryLow  InterestLevel = "very_low"  // 0-19
)

// Stage is one of the five ordered negotiation phases.
type Stage string

const (
	StageInitial              Stage = "initial"
	StageInformationGathering Stage = "information_gathering"
	StageDetailedReview       Stage = "detailed_review"
	StageFinalEvaluation      Stage = "final_evaluation"
	StageDecisionMaking       Stage = "decision_making"
)

var stageOrder = []Stage{
	StageInitial,
	StageInformationGathering,
	StageDetailedReview,
	StageFinalEvaluation,
	StageDecisionMaking,
}

// Index returns the position of the stage in the progression, or -1 for an
// unknown stage.
func (s Stage) Index() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the following stage. The final stage returns itself; the
// machine never exits decision making through stage advancement.
func (s Stage) Next() (Stage, error) {
	idx := s.Index()
	if idx < 0 {
		return s, fmt.Errorf("unknown negotiation stage %q", s)
	}
	if idx == len(stageOrder)-1 {
		return s, nil
	}
	return stageOrder[idx+1], nil
}
