package ports

import "context"

type ChatService interface {
	// CreateDialog opens a private dialog between two linked users,
	// initiated by the caller identified by its remote id.
	CreateDialog(ctx context.Context, callerRemoteID, peerRemoteID int64) (string, error)
	// SendPush delivers a push notification to the target remote
	// accounts on behalf of the sender.
	SendPush(ctx context.Context, senderRemoteID int64, targetIDs []int64, title, content string) error
}
