package scorer

// PreferredFields is the per-log-type allow-list of columns known from past
// M365 engagements to be trustworthy verification signals. Curated by hand;
// the historical learning store adjusts scores empirically, this table
// encodes analyst judgment directly.
var PreferredFields = map[string][]string{
	"sign_in_logs":      {"status", "error_code", "result_type"},
	"unified_audit_log": {"operation", "result_status"},
	"legacy_auth_logs":  {"status"},
	"mailbox_audit":     {"operation", "logon_type"},
	"message_trace":     {"status", "event_id"},
	"admin_audit_log":   {"succeeded"},
}
