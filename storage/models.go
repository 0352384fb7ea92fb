package storage

import (
	"time"
)

// Row is one persisted scan result. Every row is committed in its own
// transaction; there is no per-domain transaction.
type Row interface {
	TableName() string
}

// AddressRecord is one decoded A or AAAA resource record
type AddressRecord struct {
	RunID         string `gorm:"index"`
	State         string
	Domain        string `gorm:"index"`
	EffectiveTLDP string
	TTL           uint32
	Address       string
}

func (AddressRecord) TableName() string { return "address_rr" }

// KeyRecord is one decoded DNSKEY resource record. For RSA capable
// algorithms either RSAExponent+RSAModulus or OtherKey (with the -1
// exponent sentinel) is populated, never both.
type KeyRecord struct {
	RunID         string `gorm:"index"`
	State         string
	Domain        string `gorm:"index"`
	EffectiveTLDP string
	TTL           uint32
	Flags         uint16
	Protocol      uint8
	Algorithm     uint8
	RSAExponent   *int64
	RSAModulus    []byte
	OtherKey      []byte
}

func (KeyRecord) TableName() string { return "dnskey_rr" }

// MXRecord is one decoded MX resource record
type MXRecord struct {
	RunID         string `gorm:"index"`
	State         string
	Domain        string `gorm:"index"`
	EffectiveTLDP string
	TTL           uint32
	Preference    uint16
	Exchange      string
}

func (MXRecord) TableName() string { return "mx_rr" }

// SignatureRecord is RRSIG metadata belonging to the answer that produced
// the decoded records of RRType for Domain
type SignatureRecord struct {
	RunID         string `gorm:"index"`
	Domain        string `gorm:"index"`
	TTL           uint32
	RRType        string
	Algorithm     uint8
	Labels        uint8
	OriginalTTL   uint32
	SigExpiration time.Time
	SigInception  time.Time
	KeyTag        uint16
	SignerName    string
	Signature     []byte
}

func (SignatureRecord) TableName() string { return "rrsig_rr" }

// DenialRecord is NSEC/NSEC3 denial-of-existence metadata found alongside
// an answer
type DenialRecord struct {
	RunID      string `gorm:"index"`
	Domain     string `gorm:"index"`
	RRType     string
	Kind       string
	Owner      string
	NextDomain string
	TypeBitmap string
}

func (DenialRecord) TableName() string { return "denial_rr" }
