package audit

import (
	"context"

	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/log"
)

// Audit actions for watchparty-service.
const (
	ActionJoinRoom          = "watchparty.join_room"
	ActionLeaveRoom         = "watchparty.leave_room"
	ActionDisconnect        = "watchparty.disconnect"
	ActionHostChanged       = "watchparty.host_changed"
	ActionHostClaimRejected = "watchparty.host_claim_rejected"
	ActionControlDropped    = "watchparty.control_dropped"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, roomID, username, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldRoomID, roomID).
		Str(log.FieldUsername, username).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action, roomID, username, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldRoomID, roomID).
		Str(log.FieldUsername, username).
		Str(FieldDetail, detail).
		Msg(msg)
}
