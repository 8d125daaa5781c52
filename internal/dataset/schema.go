package dataset

import (
	"sort"
	"strconv"
	"strings"
)

// DatasetKind identifies which family of CSV export a dataset came from.
type DatasetKind string

const (
	// KindTransactional covers receipt-level redemption exports.
	KindTransactional DatasetKind = "transactional"
	// KindPromotional covers offer-level hit exports.
	KindPromotional DatasetKind = "promotional"
)

// Schema is the result of the one-time field detection pass over a
// dataset's headers. Downstream computations read field names from here
// and never re-guess them.
type Schema struct {
	Kind          DatasetKind `json:"kind"`
	DateField     string      `json:"date_field"`
	ProductField  string      `json:"product_field"`
	RetailerField string      `json:"retailer_field"`
	AmountField   string      `json:"amount_field,omitempty"`

	// QuestionNumbers lists the NN suffixes for which a proposition_NN
	// column exists, ascending.
	QuestionNumbers []int `json:"question_numbers,omitempty"`
}

const (
	questionPrefix    = "question_"
	propositionPrefix = "proposition_"
)

// Candidate header names per concern, in priority order. Matching is
// case-insensitive on the normalized header.
var (
	dateCandidates     = []string{"receipt_date", "created_at", "transaction_date", "date"}
	productCandidates  = []string{"product_name", "offer_name", "product"}
	retailerCandidates = []string{"chain", "retailer", "store"}
	amountCandidates   = []string{"amount", "value", "price", "total", "basket_value"}
)

// DetectSchema inspects a header row and fixes the field names every
// later computation will use. Field names are normalized (lowercased,
// trimmed); ingestion keys record fields the same way.
func DetectSchema(headers []string) Schema {
	normalized := make(map[string]bool, len(headers))
	for _, h := range headers {
		normalized[normalizeHeader(h)] = true
	}

	pick := func(candidates []string) string {
		for _, c := range candidates {
			if normalized[c] {
				return c
			}
		}
		return ""
	}

	s := Schema{
		DateField:     pick(dateCandidates),
		ProductField:  pick(productCandidates),
		RetailerField: pick(retailerCandidates),
		AmountField:   pick(amountCandidates),
	}

	if normalized["offer_name"] {
		s.Kind = KindPromotional
	} else {
		s.Kind = KindTransactional
	}

	seen := map[int]bool{}
	for key := range normalized {
		if !strings.HasPrefix(key, propositionPrefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(key, propositionPrefix)); err == nil && !seen[n] {
			seen[n] = true
			s.QuestionNumbers = append(s.QuestionNumbers, n)
		}
	}
	sort.Ints(s.QuestionNumbers)

	return s
}

// QuestionField returns the header carrying question text for question n.
func QuestionField(n int) string {
	return questionPrefix + strconv.Itoa(n)
}

// PropositionField returns the header carrying responses for question n.
func PropositionField(n int) string {
	return propositionPrefix + strconv.Itoa(n)
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
