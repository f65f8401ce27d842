package sim

import "sort"

// ActionKind discriminates the tagged Action variant. Dispatch happens at a
// single site in the day simulator with an exhaustive switch.
type ActionKind int

const (
	ActionTakeLoan ActionKind = iota
	ActionPayDebt
	ActionHire
	ActionBuyMachine
	ActionSellMachine
	ActionOrderMaterials
	ActionSetBatchSize
	ActionSetAllocation
	ActionSetPrice
	numActionKinds
)

// String names the action kind for logs and history.
func (k ActionKind) String() string {
	switch k {
	case ActionTakeLoan:
		return "take-loan"
	case ActionPayDebt:
		return "pay-debt"
	case ActionHire:
		return "hire"
	case ActionBuyMachine:
		return "buy-machine"
	case ActionSellMachine:
		return "sell-machine"
	case ActionOrderMaterials:
		return "order-materials"
	case ActionSetBatchSize:
		return "set-batch-size"
	case ActionSetAllocation:
		return "set-allocation"
	case ActionSetPrice:
		return "set-price"
	default:
		return "unknown"
	}
}

// Action is one discrete timed decision. Amount carries currency values
// (loans, debt payments, prices, allocation fractions); Count carries unit
// quantities (hires, machines, material units, batch sizes).
type Action struct {
	Day    int
	Kind   ActionKind
	Amount float64
	Count  int
}

// ActionsForDay filters and merges the actions due on the given day.
// Same-day duplicates of one kind collapse into a single action: additive
// kinds (loans, payments, hires, machine trades, material orders) sum their
// magnitudes; setter kinds keep the last value. The result is ordered by
// kind so execution order is stable.
func ActionsForDay(actions []Action, day int) []Action {
	var merged [numActionKinds]*Action
	for _, a := range actions {
		if a.Day != day {
			continue
		}
		cur := merged[a.Kind]
		if cur == nil {
			cp := a
			merged[a.Kind] = &cp
			continue
		}
		switch a.Kind {
		case ActionTakeLoan, ActionPayDebt:
			cur.Amount += a.Amount
		case ActionHire, ActionBuyMachine, ActionSellMachine, ActionOrderMaterials:
			cur.Count += a.Count
		case ActionSetBatchSize, ActionSetAllocation, ActionSetPrice:
			*cur = a // last write wins
		}
	}

	out := make([]Action, 0, len(merged))
	for _, a := range merged {
		if a != nil {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
