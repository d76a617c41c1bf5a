package handler

type createDialogRequest struct {
	CreatorRemoteID int64 `json:"creator_remote_id" validate:"required"`
	PeerRemoteID    int64 `json:"peer_remote_id"    validate:"required"`
}

type createDialogResponse struct {
	DialogID string `json:"dialog_id"`
}

type sendPushRequest struct {
	SenderRemoteID  int64   `json:"sender_remote_id"  validate:"required"`
	TargetRemoteIDs []int64 `json:"target_remote_ids" validate:"required,min=1"`
	Title           string  `json:"title"             validate:"required"`
	Content         string  `json:"content"           validate:"required"`
}
