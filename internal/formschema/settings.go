package formschema

import (
	"encoding/json"
	"strings"
)

// Default notification templates.
const (
	DefaultSubject = "New submission from {{formName}}"
	DefaultMessage = "A new submission was received for {{formName}}."
)

// DurationRule names the two HH:MM fields whose difference is stored with
// every submission. Either name empty disables the calculation.
type DurationRule struct {
	StartField string
	EndField   string
	Extra      map[string]any
}

func (r DurationRule) Enabled() bool {
	return r.StartField != "" && r.EndField != ""
}

type Branding struct {
	LogoURL string
	Extra   map[string]any
}

type Notifications struct {
	Enabled           bool
	Recipients        []string
	Subject           string
	Message           string
	IncludeSubmission bool
	Extra             map[string]any
}

// Settings is the per-form configuration. Unknown keys at any level are kept
// in the Extra maps and written back unchanged.
type Settings struct {
	AllowCSVExport        bool
	AutoCalculateDuration DurationRule
	Branding              Branding
	Notifications         Notifications
	Extra                 map[string]any
}

// DefaultSettings is what a form without any stored settings gets.
func DefaultSettings() Settings {
	return Settings{
		AllowCSVExport:        true,
		AutoCalculateDuration: DurationRule{StartField: "startTime", EndField: "endTime"},
		Notifications: Notifications{
			Recipients:        []string{},
			Subject:           DefaultSubject,
			Message:           DefaultMessage,
			IncludeSubmission: true,
		},
	}
}

// MergeSettings fills raw section by section from DefaultSettings.
//
// A missing or non-object section falls back to its defaults; a present
// section overrides only the keys it carries. Afterwards logoUrl, subject
// and message are trimmed (an empty subject reverts to DefaultSubject),
// recipients keep only trimmed non-empty strings and notifications are
// disabled when no recipient is left.
func MergeSettings(raw map[string]any) (Settings, bool) {
	s := DefaultSettings()
	extra := make(map[string]any)

	for k, v := range raw {
		switch k {
		case "allowCsvExport":
			s.AllowCSVExport = truthy(v)
		case "autoCalculateDuration":
			s.AutoCalculateDuration = mergeDuration(s.AutoCalculateDuration, v)
		case "branding":
			s.Branding = mergeBranding(s.Branding, v)
		case "notifications":
			s.Notifications = mergeNotifications(s.Notifications, v)
		default:
			extra[k] = CloneValue(v)
		}
	}
	if len(extra) > 0 {
		s.Extra = extra
	}

	return s, !SameJSON(raw, s)
}

func mergeDuration(d DurationRule, v any) DurationRule {
	m, ok := v.(map[string]any)
	if !ok {
		return d
	}
	extra := make(map[string]any)
	for k, item := range m {
		switch k {
		case "startField":
			d.StartField = asString(item)
		case "endField":
			d.EndField = asString(item)
		default:
			extra[k] = CloneValue(item)
		}
	}
	if len(extra) > 0 {
		d.Extra = extra
	}
	return d
}

func mergeBranding(b Branding, v any) Branding {
	m, ok := v.(map[string]any)
	if !ok {
		return b
	}
	extra := make(map[string]any)
	for k, item := range m {
		switch k {
		case "logoUrl":
			b.LogoURL = strings.TrimSpace(asString(item))
		default:
			extra[k] = CloneValue(item)
		}
	}
	if len(extra) > 0 {
		b.Extra = extra
	}
	return b
}

func mergeNotifications(n Notifications, v any) Notifications {
	m, ok := v.(map[string]any)
	if !ok {
		return n
	}
	extra := make(map[string]any)
	for k, item := range m {
		switch k {
		case "enabled":
			n.Enabled = truthy(item)
		case "recipients":
			if list, ok := item.([]any); ok {
				n.Recipients = trimmedStrings(list)
			} else {
				n.Recipients = []string{}
			}
		case "subject":
			n.Subject = strings.TrimSpace(asString(item))
			if n.Subject == "" {
				n.Subject = DefaultSubject
			}
		case "message":
			n.Message = strings.TrimSpace(asString(item))
		case "includeSubmission":
			n.IncludeSubmission = truthy(item)
		default:
			extra[k] = CloneValue(item)
		}
	}
	if len(extra) > 0 {
		n.Extra = extra
	}
	if len(n.Recipients) == 0 {
		n.Enabled = false
	}
	return n
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := s
	out.AutoCalculateDuration.Extra = CloneMap(s.AutoCalculateDuration.Extra)
	out.Branding.Extra = CloneMap(s.Branding.Extra)
	out.Notifications.Recipients = append([]string{}, s.Notifications.Recipients...)
	out.Notifications.Extra = CloneMap(s.Notifications.Extra)
	out.Extra = CloneMap(s.Extra)
	return out
}

func withExtra(extra map[string]any, size int) map[string]any {
	m := make(map[string]any, len(extra)+size)
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func (s Settings) toMap() map[string]any {
	duration := withExtra(s.AutoCalculateDuration.Extra, 2)
	duration["startField"] = s.AutoCalculateDuration.StartField
	duration["endField"] = s.AutoCalculateDuration.EndField

	branding := withExtra(s.Branding.Extra, 1)
	branding["logoUrl"] = s.Branding.LogoURL

	recipients := s.Notifications.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	notifications := withExtra(s.Notifications.Extra, 5)
	notifications["enabled"] = s.Notifications.Enabled
	notifications["recipients"] = recipients
	notifications["subject"] = s.Notifications.Subject
	notifications["message"] = s.Notifications.Message
	notifications["includeSubmission"] = s.Notifications.IncludeSubmission

	m := withExtra(s.Extra, 4)
	m["allowCsvExport"] = s.AllowCSVExport
	m["autoCalculateDuration"] = duration
	m["branding"] = branding
	m["notifications"] = notifications
	return m
}

func (s Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toMap())
}

// UnmarshalJSON merges the decoded object over DefaultSettings. JSON null
// yields the defaults.
func (s *Settings) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s, _ = MergeSettings(raw)
	return nil
}
