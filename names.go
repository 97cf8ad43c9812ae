package finkitty

import "strings"

// CashName is the distinguished asset every model owns implicitly. Incomes pay
// into it, expenses and taxes draw from it, and liquidation conditionals top
// it up.
const CashName = "Cash"

// Role classifies the semantics overlaid on an entity or transaction name by
// its prefix. The external string format is fixed (saved models carry these
// prefixes verbatim); internal code dispatches on the decoded Role instead of
// re-parsing prefixes.
type Role int

const (
	// RolePlain is any name with no recognized prefix.
	RolePlain Role = iota
	// RolePensionDC marks an uncrystallized defined-contribution pot, or a
	// contribution transaction feeding one out of pre-tax salary.
	RolePensionDC
	// RolePensionDB marks a defined-benefit accrual transaction or the
	// accruing pension income it feeds.
	RolePensionDB
	// RolePensionSS marks a salary-sacrifice contribution, which reduces
	// NIable income as well as taxable income.
	RolePensionSS
	// RolePensionDBTransfer moves a defined-benefit entitlement between
	// named people.
	RolePensionDBTransfer
	// RoleCrystallizedTaxable marks the taxable portion of a crystallized
	// pot; withdrawals from it are taxable income for its liable person.
	RoleCrystallizedTaxable
	// RoleCrystallizedTaxFree marks the tax-free portion of a crystallized pot.
	RoleCrystallizedTaxFree
	// RoleCrystallizedTransfer moves a crystallized pot between named people.
	RoleCrystallizedTransfer
	// RoleConditional marks a transaction that fires only to keep its target
	// out of the red.
	RoleConditional
	// RoleRevaluation marks a transaction that overwrites a value without
	// moving cash.
	RoleRevaluation
)

func (r Role) String() string {
	switch r {
	case RolePlain:
		return "plain"
	case RolePensionDC:
		return "pensionDC"
	case RolePensionDB:
		return "pensionDB"
	case RolePensionSS:
		return "pensionSS"
	case RolePensionDBTransfer:
		return "pensionDBTransfer"
	case RoleCrystallizedTaxable:
		return "crystallizedTaxable"
	case RoleCrystallizedTaxFree:
		return "crystallizedTaxFree"
	case RoleCrystallizedTransfer:
		return "crystallizedTransfer"
	case RoleConditional:
		return "conditional"
	case RoleRevaluation:
		return "revaluation"
	default:
		return "unknown"
	}
}

// The external prefix set, preserved verbatim from the saved-model format.
// Order matters: longer, more specific prefixes are matched first so that
// "PensionDB Works" is defined-benefit, not a DC pot named "DB Works".
const (
	prefixPensionDBTransfer    = "PensionTransfer "
	prefixPensionDB            = "PensionDB "
	prefixPensionSS            = "PensionSS "
	prefixPensionDC            = "Pension"
	prefixCrystallizedTransfer = "TransferCrystallizedPension "
	prefixCrystallizedTaxable  = "CrystallizedPension"
	prefixCrystallizedTaxFree  = "TaxFree "
	prefixConditional          = "Conditional "
	prefixRevaluation          = "Revalue "
)

var prefixByRole = []struct {
	prefix string
	role   Role
}{
	{prefixPensionDBTransfer, RolePensionDBTransfer},
	{prefixPensionDB, RolePensionDB},
	{prefixPensionSS, RolePensionSS},
	{prefixCrystallizedTransfer, RoleCrystallizedTransfer},
	{prefixCrystallizedTaxable, RoleCrystallizedTaxable},
	{prefixCrystallizedTaxFree, RoleCrystallizedTaxFree},
	{prefixConditional, RoleConditional},
	{prefixRevaluation, RoleRevaluation},
	// Generic DC prefix last: every other pension prefix starts with it.
	{prefixPensionDC, RolePensionDC},
}

// Decoded is the result of decoding a name: its role and the residual base
// name with the prefix stripped.
type Decoded struct {
	Role Role
	Base string
}

// DecodeName decodes the fixed prefix convention on an entity or transaction
// name. It is total over all strings: unrecognized prefixes decode to
// RolePlain with the name unchanged.
func DecodeName(name string) Decoded {
	for _, p := range prefixByRole {
		if rest, ok := strings.CutPrefix(name, p.prefix); ok {
			return Decoded{Role: p.role, Base: strings.TrimSpace(rest)}
		}
	}
	return Decoded{Role: RolePlain, Base: name}
}

// EncodeName is the inverse of DecodeName: it re-applies the external prefix
// for a role to a base name.
func EncodeName(role Role, base string) string {
	switch role {
	case RolePensionDC:
		return prefixPensionDC + base
	case RolePensionDB:
		return prefixPensionDB + base
	case RolePensionSS:
		return prefixPensionSS + base
	case RolePensionDBTransfer:
		return prefixPensionDBTransfer + base
	case RoleCrystallizedTaxable:
		return prefixCrystallizedTaxable + base
	case RoleCrystallizedTaxFree:
		return prefixCrystallizedTaxFree + base
	case RoleCrystallizedTransfer:
		return prefixCrystallizedTransfer + base
	case RoleConditional:
		return prefixConditional + base
	case RoleRevaluation:
		return prefixRevaluation + base
	default:
		return base
	}
}
