package patient

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// SearchMode selects which identifier a patient search matches against.
type SearchMode string

const (
	ModeUHID    SearchMode = "uhid"
	ModeMobile  SearchMode = "mobile"
	ModeName    SearchMode = "name"
	ModeNameDOB SearchMode = "name_dob"
)

// Valid reports whether m is a known search mode.
func (m SearchMode) Valid() bool {
	switch m {
	case ModeUHID, ModeMobile, ModeName, ModeNameDOB:
		return true
	}
	return false
}

// Outcome is the result of classifying a patient search. The seven outcomes
// are mutually exclusive; exactly one applies to any search.
type Outcome string

const (
	// OutcomeConfirmed: exactly one result, treat as a confirmed match.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeDisambiguate: multiple results not attributable to name-only
	// ambiguity, present all for manual selection.
	OutcomeDisambiguate Outcome = "disambiguate"
	// OutcomeRegisterNew: zero results, route to new registration.
	OutcomeRegisterNew Outcome = "register_new"
	// OutcomeNeedMoreDetail: multiple results on a name-only search, prompt
	// for a secondary identifier.
	OutcomeNeedMoreDetail Outcome = "need_more_detail"
	// OutcomePartialRegistration: caller flagged missing identifying fields,
	// allow registration with incomplete data.
	OutcomePartialRegistration Outcome = "partial_registration"
	// OutcomePossibleDuplicate: multiple results sharing the exact searched
	// name, require explicit confirmation before creating another record.
	OutcomePossibleDuplicate Outcome = "possible_duplicate"
	// OutcomeEmergency: unconscious/emergency admission, proceed immediately
	// under a temporary identifier.
	OutcomeEmergency Outcome = "emergency"
)

// Classification is the outcome of a search plus the records supporting it.
type Classification struct {
	Outcome    Outcome    `json:"outcome"`
	Match      *Patient   `json:"match,omitempty"`      // confirmed only
	Candidates []*Patient `json:"candidates,omitempty"` // disambiguate / need_more_detail
	Duplicates []*Patient `json:"duplicates,omitempty"` // possible_duplicate only
	TempID     string     `json:"temp_id,omitempty"`    // emergency only
}

// Classify partitions a search into exactly one outcome. It is deterministic
// and side-effect-free apart from the random digits of an emergency TempID.
//
// Precedence: emergency wins over everything, then the partial-info flag,
// then result cardinality.
func Classify(mode SearchMode, query string, results []*Patient, partialInfo, emergency bool) Classification {
	if emergency {
		return Classification{Outcome: OutcomeEmergency, TempID: TempID(time.Now())}
	}
	if partialInfo {
		return Classification{Outcome: OutcomePartialRegistration}
	}

	switch len(results) {
	case 0:
		return Classification{Outcome: OutcomeRegisterNew}
	case 1:
		return Classification{Outcome: OutcomeConfirmed, Match: results[0]}
	}

	if dups := exactNameMatches(query, results); len(dups) >= 2 {
		return Classification{Outcome: OutcomePossibleDuplicate, Duplicates: dups}
	}
	if mode == ModeName {
		return Classification{Outcome: OutcomeNeedMoreDetail, Candidates: results}
	}
	return Classification{Outcome: OutcomeDisambiguate, Candidates: results}
}

func exactNameMatches(query string, results []*Patient) []*Patient {
	want := strings.ToLower(strings.TrimSpace(query))
	if want == "" {
		return nil
	}
	var out []*Patient
	for _, p := range results {
		if strings.ToLower(p.FullName()) == want {
			out = append(out, p)
		}
	}
	return out
}

// TempID synthesizes a temporary identifier for emergency admissions, of the
// form TEMP-YYMMDD-NNNN.
func TempID(now time.Time) string {
	return fmt.Sprintf("TEMP-%s-%04d", now.Format("060102"), rand.Intn(10000))
}
