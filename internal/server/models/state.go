package models

// State is the whole snapshot document.
type State struct {
	Workspaces  []Workspace  `json:"workspaces"`
	Forms       []Form       `json:"forms"`
	Submissions []Submission `json:"submissions"`
	Users       []User       `json:"users"`
	Packages    []Package    `json:"packages"`
}

// Clone returns a deep copy; nil collections become empty ones.
func (s State) Clone() State {
	out := State{
		Workspaces:  append([]Workspace{}, s.Workspaces...),
		Users:       append([]User{}, s.Users...),
		Forms:       make([]Form, len(s.Forms)),
		Submissions: make([]Submission, len(s.Submissions)),
		Packages:    make([]Package, len(s.Packages)),
	}
	for i, f := range s.Forms {
		out.Forms[i] = f.Clone()
	}
	for i, sub := range s.Submissions {
		out.Submissions[i] = sub.Clone()
	}
	for i, p := range s.Packages {
		out.Packages[i] = p.Clone()
	}
	return out
}
