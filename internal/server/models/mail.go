package models

import "time"

// Mail sender markers. GM/shop parcels carry the system marker so the game
// client renders them as official mail.
const (
	MailSenderSystem int64 = 0
)

// MailMessage is one parcel addressed to exactly one character. ID is
// realm-scoped and allocated by the delivery engine. If HasItems is set, at
// least one MailItemLink row referencing ID exists by the time the delivery
// transaction commits.
type MailMessage struct {
	ID           int64
	SenderGUID   int64
	ReceiverGUID int64
	Subject      string
	Body         string
	Money        int64
	HasItems     bool
	DeliverTime  time.Time
	ExpireTime   time.Time
}

// MailItemLink associates one delivered item stack with its parcel.
type MailItemLink struct {
	MailID       int64
	ItemGUID     int64
	ReceiverGUID int64
}
