package wizard

import (
	"encoding/json"
	"fmt"
)

// FormStep is one screen of the wizard proper.
type FormStep int

const (
	StepPersonalInfo FormStep = iota + 1
	StepPhoto
	StepLocation
	StepEmergencyContact
	StepBeneficiaries
	StepReview
)

const (
	FirstStep = StepPersonalInfo
	LastStep  = StepReview
)

var formStepNames = map[FormStep]string{
	StepPersonalInfo:     "personal_info",
	StepPhoto:            "photo",
	StepLocation:         "location",
	StepEmergencyContact: "emergency_contact",
	StepBeneficiaries:    "beneficiaries",
	StepReview:           "review",
}

func (s FormStep) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s FormStep) String() string {
	if name, ok := formStepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("form_step(%d)", int(s))
}

type Kind uint8

const (
	KindAgentGate Kind = iota
	KindForm
	KindSuccess
)

func (k Kind) String() string {
	switch k {
	case KindAgentGate:
		return "agent_gate"
	case KindForm:
		return "form"
	case KindSuccess:
		return "success"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Position is where a wizard currently stands: the optional agent gate, one of
// the six form steps, or the terminal success view. The zero value is the
// agent gate.
type Position struct {
	kind Kind
	step FormStep
}

func AgentGate() Position {
	return Position{kind: KindAgentGate}
}

func Form(step FormStep) Position {
	return Position{kind: KindForm, step: step}
}

func Success() Position {
	return Position{kind: KindSuccess}
}

func (p Position) Kind() Kind {
	return p.kind
}

// Step reports the form step and whether the position is a form step at all.
func (p Position) Step() (FormStep, bool) {
	if p.kind != KindForm {
		return 0, false
	}
	return p.step, true
}

func (p Position) Is(step FormStep) bool {
	s, ok := p.Step()
	return ok && s == step
}

// Number is the persisted encoding: 0 for the agent gate, 1..6 for form steps
// and 7 for success.
func (p Position) Number() int {
	switch p.kind {
	case KindForm:
		return int(p.step)
	case KindSuccess:
		return int(LastStep) + 1
	}
	return 0
}

func PositionFromNumber(n int) (Position, error) {
	switch {
	case n == 0:
		return AgentGate(), nil
	case FormStep(n).Valid():
		return Form(FormStep(n)), nil
	case n == int(LastStep)+1:
		return Success(), nil
	}
	return Position{}, fmt.Errorf("wizard: invalid step number %d", n)
}

func (p Position) String() string {
	if p.kind == KindForm {
		return p.step.String()
	}
	return p.kind.String()
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Number())
}

func (p *Position) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	pos, err := PositionFromNumber(n)
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

// EntryMode selects which screen a fresh wizard opens on.
type EntryMode string

const (
	EntryPlain EntryMode = "plain"
	EntryAgent EntryMode = "agent"
)

func (m EntryMode) Valid() bool {
	return m == EntryPlain || m == EntryAgent
}

func (m EntryMode) initialPosition() Position {
	if m == EntryAgent {
		return AgentGate()
	}
	return Form(FirstStep)
}

// View is the routing decision consumed by clients rendering the wizard.
type View struct {
	Kind Kind     `json:"kind"`
	Step FormStep `json:"step,omitempty"`
}
