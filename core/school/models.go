package school

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/ada/core"
)

type TransportTier string

// Transport tiers, by distance from school
const (
	TierNone    TransportTier = "None"
	TierBelow3  TransportTier = "Below 3KM"
	Tier3To5    TransportTier = "3-5KM"
	Tier5To10   TransportTier = "5-10KM"
	TierAbove10 TransportTier = "Above 10KM"
)

var AllTransportTiers = []TransportTier{TierNone, TierBelow3, Tier3To5, Tier5To10, TierAbove10}

// tierKeys maps lowered, space-less labels to tiers: "Below 3 km" and "Below 3KM" are the same tier.
var tierKeys = map[string]TransportTier{
	"":          TierNone,
	"none":      TierNone,
	"below3km":  TierBelow3,
	"3-5km":     Tier3To5,
	"5-10km":    Tier5To10,
	"above10km": TierAbove10,
}

// NormalizeTransportTier returns the canonical tier of label. Empty labels are TierNone.
func NormalizeTransportTier(label string) (TransportTier, error) {
	key := strings.ToLower(strings.Join(strings.Fields(label), ""))
	if tier, ok := tierKeys[key]; ok {
		return tier, nil
	}
	return "", ErrUnknownTransportTier
}

type (
	// TransportFees are the monthly transport fees per tier.
	TransportFees struct {
		Below3        decimal.Decimal `json:"below3" validate:"gte=0"`
		Between3And5  decimal.Decimal `json:"between3and5" validate:"gte=0"`
		Between5And10 decimal.Decimal `json:"between5and10" validate:"gte=0"`
		Above10       decimal.Decimal `json:"above10" validate:"gte=0"`
	}

	// Class is a grade taught at the school and what it costs.
	Class struct {
		ID           int             `json:"id"`
		Name         string          `json:"name" validate:"required"`
		TuitionFee   decimal.Decimal `json:"tuitionFee" validate:"gte=0"`
		AdmissionFee decimal.Decimal `json:"admissionFee" validate:"gte=0"`
	}

	// Settings describes the school. There is one per deployment.
	Settings struct {
		ID            int           `json:"id"`
		SchoolID      string        `json:"schoolId" validate:"required"`
		SchoolName    string        `json:"schoolName" validate:"required"`
		Slogan        string        `json:"slogan"`
		AdminName     string        `json:"adminName"`
		AdminEmail    string        `json:"adminEmail" validate:"omitempty,email"`
		Logo          string        `json:"logoBase64"`
		TransportFees TransportFees `json:"transportFees"`
		Classes       []Class       `json:"classes" validate:"dive"`
		CreatedAt     time.Time     `json:"createdAt"` // UTC
		UpdatedAt     time.Time     `json:"updatedAt"` // UTC
	}

	// FeeStructure is the public price list of the school.
	FeeStructure struct {
		Classes       []Class       `json:"classes"`
		TransportFees TransportFees `json:"transportFees"`
	}
)

// For returns the monthly fee of tier. TierNone costs nothing.
func (tf TransportFees) For(tier TransportTier) (decimal.Decimal, error) {
	switch tier {
	case TierNone:
		return decimal.Zero, nil
	case TierBelow3:
		return tf.Below3, nil
	case Tier3To5:
		return tf.Between3And5, nil
	case Tier5To10:
		return tf.Between5And10, nil
	case TierAbove10:
		return tf.Above10, nil
	}
	return decimal.Zero, ErrUnknownTransportTier
}

// ClassFee returns the class named name.
func (s Settings) ClassFee(name string) (Class, error) {
	name = core.CleanString(name)
	for _, cls := range s.Classes {
		if cls.Name == name {
			return cls, nil
		}
	}
	return Class{}, ErrClassNotFound
}

// TransportFee returns the monthly transport fee for the given tier label.
func (s Settings) TransportFee(label string) (decimal.Decimal, error) {
	tier, err := NormalizeTransportTier(label)
	if err != nil {
		return decimal.Zero, err
	}
	return s.TransportFees.For(tier)
}

// FeeStructure returns the classes sorted by name along with the transport fees.
func (s Settings) FeeStructure() FeeStructure {
	classes := append([]Class(nil), s.Classes...)
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return FeeStructure{Classes: classes, TransportFees: s.TransportFees}
}

func (s *Settings) clean() {
	s.SchoolID = core.CleanString(s.SchoolID)
	s.SchoolName = core.CleanString(s.SchoolName)
	s.Slogan = core.CleanString(s.Slogan)
	s.AdminName = core.CleanString(s.AdminName)
	s.AdminEmail = core.CleanString(s.AdminEmail, true /* lower */)
	for i := range s.Classes {
		s.Classes[i].Name = core.CleanString(s.Classes[i].Name)
	}
}

func (s *Settings) Validate() error {
	s.clean()
	return core.Validate.Struct(s)
}
