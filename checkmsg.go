package finkitty

import "fmt"

// IssueKind enumerates the model-check failure taxonomy. The rendered
// message text is part of the external contract: callers surface it verbatim
// and match on it, so kinds and their templates only ever grow.
type IssueKind int

const (
	IssueEmptyName IssueKind = iota
	IssueBadNumber
	IssueBadDate
	IssueBadRecurrenceSuffix
	IssueBadRecurrenceNumber
	IssueUnknownReference
	IssueRevalueBeforeStart
	IssueBadLiability
	IssueNIWithoutIncomeTax
	IssueConditionalTarget
	IssuePensionFraction
	IssueEndBeforeStart
)

// CheckIssue is one model-check failure: a kind plus the parameters its
// message template needs. Rendering to text happens only in Message, so the
// logical and textual contracts can evolve independently.
type CheckIssue struct {
	Kind   IssueKind
	Entity string // owning entity name, e.g. "asset 'stocks'"
	Field  string // offending field, e.g. "GROWTH"
	Value  string // offending value
	Detail string // extra context, e.g. a wrapped resolver error
}

// Message renders the issue using its fixed template.
func (i CheckIssue) Message() string {
	switch i.Kind {
	case IssueEmptyName:
		return fmt.Sprintf("%s: name should be not empty", i.Entity)
	case IssueBadNumber:
		return fmt.Sprintf("%s: %s %q is not a number or recognized setting (%s)", i.Entity, i.Field, i.Value, i.Detail)
	case IssueBadDate:
		return fmt.Sprintf("%s: %s %q is not a valid date or trigger (%s)", i.Entity, i.Field, i.Value, i.Detail)
	case IssueBadRecurrenceSuffix:
		return fmt.Sprintf("%s: recurrence %q must end in w, m or y", i.Entity, i.Value)
	case IssueBadRecurrenceNumber:
		return fmt.Sprintf("%s: recurrence %q must be a number ending in w, m or y", i.Entity, i.Value)
	case IssueUnknownReference:
		return fmt.Sprintf("%s: %s %q: unrecognised asset (could be typo or before asset start date?)", i.Entity, i.Field, i.Value)
	case IssueRevalueBeforeStart:
		return fmt.Sprintf("%s: dated before start of %q", i.Entity, i.Value)
	case IssueBadLiability:
		return fmt.Sprintf("%s: liability %q must list Person(incomeTax), Person(NI) or Person(CGT) parts separated by /", i.Entity, i.Value)
	case IssueNIWithoutIncomeTax:
		return fmt.Sprintf("%s: NI liability for %q needs a matching income tax liability", i.Entity, i.Value)
	case IssueConditionalTarget:
		return fmt.Sprintf("%s: conditional transaction must pay to %s or pay off a debt", i.Entity, CashName)
	case IssuePensionFraction:
		return fmt.Sprintf("%s: pension contribution fraction %q is above 1", i.Entity, i.Value)
	case IssueEndBeforeStart:
		return fmt.Sprintf("%s: end %q is before start %q", i.Entity, i.Value, i.Detail)
	default:
		return fmt.Sprintf("%s: unknown model check failure", i.Entity)
	}
}

// CheckOKMessage is what callers show when CheckModel finds nothing wrong.
const CheckOKMessage = "model check all good"
