package service

import (
	"fmt"
	"time"

	"railtrace/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence counter names. The serial counter is global (serial numbers are
// unique across item codes); batch counters are scoped per item code.
const (
	serialCounterName      = "component_serial"
	componentIDCounterName = "component_id"
	batchCounterPrefix     = "batch:"
)

// Identity is one issued (component_id, serial_number, batch_number) tuple
type Identity struct {
	ComponentID  string
	SerialNumber string
	BatchNumber  string
}

// IDGenerator issues component identifiers from persisted sequence counters.
// All methods must run inside the caller's transaction so that identifier
// issuance commits or rolls back together with the records that use it.
type IDGenerator struct{}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NextBatch issues batchSize identifier tuples for one production run of
// itemCode. Every tuple in the run shares a batch number; serial numbers and
// component ids continue their global sequences.
func (g *IDGenerator) NextBatch(tx *gorm.DB, itemCode string, batchSize int, now time.Time) ([]Identity, error) {
	if batchSize <= 0 {
		return nil, Validationf("batch_size must be positive, got %d", batchSize)
	}

	var count int64
	if err := tx.Model(&model.ComponentType{}).Where("code = ?", itemCode).Count(&count).Error; err != nil {
		return nil, wrapDBErr(err, "component type catalog")
	}
	if count == 0 {
		return nil, NotFoundf("unknown item_code %q", itemCode)
	}

	batchSeq, err := g.advance(tx, batchCounterPrefix+itemCode, 1)
	if err != nil {
		return nil, err
	}
	batchNumber := FormatBatchNumber(itemCode, batchSeq)

	serialEnd, err := g.advance(tx, serialCounterName, int64(batchSize))
	if err != nil {
		return nil, err
	}

	idEnd, err := g.advance(tx, componentIDCounterName, int64(batchSize))
	if err != nil {
		return nil, err
	}

	identities := make([]Identity, batchSize)
	for i := 0; i < batchSize; i++ {
		offset := int64(batchSize - 1 - i)
		identities[i] = Identity{
			ComponentID:  FormatComponentID(now, idEnd-offset),
			SerialNumber: FormatSerialNumber(serialEnd - offset),
			BatchNumber:  batchNumber,
		}
	}

	return identities, nil
}

// advance increments a named counter by n under a row lock and returns the
// new value. The counter row is created on first use.
func (g *IDGenerator) advance(tx *gorm.DB, name string, n int64) (int64, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.SequenceCounter{Name: name}).Error; err != nil {
		return 0, wrapDBErr(err, "sequence counter")
	}

	var counter model.SequenceCounter
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&counter).Error; err != nil {
		return 0, wrapDBErr(err, "sequence counter")
	}

	counter.Value += n
	if err := tx.Model(&model.SequenceCounter{}).
		Where("name = ?", name).
		Update("value", counter.Value).Error; err != nil {
		return 0, wrapDBErr(err, "sequence counter")
	}

	return counter.Value, nil
}

// FormatSerialNumber renders a serial number from the global monotonic counter
func FormatSerialNumber(seq int64) string {
	return fmt.Sprintf("SER%d", seq)
}

// FormatBatchNumber renders a batch number for one production run of an item code
func FormatBatchNumber(itemCode string, seq int64) string {
	return fmt.Sprintf("BATCH-%s-%04d", itemCode, seq)
}

// FormatComponentID renders the public component identifier carried in the QR payload
func FormatComponentID(now time.Time, seq int64) string {
	return fmt.Sprintf("COMP%s%06d", now.Format("20060102"), seq)
}
