package constants

import "strings"

// PolicyName identifies a reimbursement policy in the static table.
type PolicyName string

const (
	PolicyStandard PolicyName = "standard"
	PolicyPremium  PolicyName = "premium"
	PolicyBasic    PolicyName = "basic"
)

// DefaultPolicy is applied when a caller supplies an unknown policy name.
const DefaultPolicy = PolicyStandard

// NormalizePolicyName lowercases and trims a caller-supplied policy name.
// It does not validate membership; lookup handles unknown names.
func NormalizePolicyName(name string) PolicyName {
	return PolicyName(strings.ToLower(strings.TrimSpace(name)))
}
