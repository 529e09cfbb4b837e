package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"gorm.io/gorm"
)

// ReversalWindow 可冲销期限
const ReversalWindow = 30 * 24 * time.Hour

// keyedMutex 按 物品|库位 粒度的互斥锁，出库准入的检查和写入
// 必须在持锁状态下完成，两笔并发出库不能基于同一份库存快照同时放行。
type keyedMutex struct {
	locks sync.Map
}

func (m *keyedMutex) Lock(key string) func() {
	value, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// LedgerService 流水表的唯一写入口。字段规则、类型配对、
// 库存准入都在这里收口，仓库层不做任何业务判断。
type LedgerService struct {
	txRepo   *repository.TransactionRepository
	itemRepo *repository.ItemRepository
	locRepo  *repository.LocationRepository
	db       *gorm.DB
	stockMu  keyedMutex
}

func NewLedgerService(txRepo *repository.TransactionRepository, itemRepo *repository.ItemRepository, locRepo *repository.LocationRepository, db *gorm.DB) *LedgerService {
	return &LedgerService{txRepo: txRepo, itemRepo: itemRepo, locRepo: locRepo, db: db}
}

// TransactionDraft 待入账的流水
type TransactionDraft struct {
	ItemID     string    `json:"item_id" binding:"required"`
	LocationID string    `json:"location_id" binding:"required"`
	Type       string    `json:"type" binding:"required"`
	Quantity   int64     `json:"quantity" binding:"required"`
	Date       time.Time `json:"date"`
	Operator   string    `json:"operator" binding:"required"`
	Supplier   string    `json:"supplier"`
	Recipient  string    `json:"recipient"`
	Purpose    string    `json:"purpose"`
	BatchID    string    `json:"batch_id"`
	Notes      string    `json:"notes"`
}

// validateDraft 字段级规则。类型与供应商/领用人的配对关系：
// 入库须填供应商、不允许领用人；出库须填领用人和用途、不允许供应商。
func validateDraft(d *TransactionDraft) error {
	if d.ItemID == "" {
		return &ValidationError{Field: "item_id", Reason: "不能为空"}
	}
	if d.LocationID == "" {
		return &ValidationError{Field: "location_id", Reason: "不能为空"}
	}
	if d.Type != entity.TxTypeInbound && d.Type != entity.TxTypeOutbound {
		return &ValidationError{Field: "type", Reason: "必须为 INBOUND 或 OUTBOUND"}
	}
	if d.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "必须大于0"}
	}
	if d.Quantity > entity.TxMaxQuantity {
		return &ValidationError{Field: "quantity", Reason: "超过单笔数量上限"}
	}
	if d.Date.After(time.Now()) {
		return &ValidationError{Field: "date", Reason: "不能晚于当前时间"}
	}
	if d.Operator == "" {
		return &ValidationError{Field: "operator", Reason: "不能为空"}
	}
	switch d.Type {
	case entity.TxTypeInbound:
		if d.Supplier == "" {
			return &ValidationError{Field: "supplier", Reason: "入库必须填写供应商"}
		}
		if d.Recipient != "" {
			return &ValidationError{Field: "recipient", Reason: "入库不允许填写领用人"}
		}
	case entity.TxTypeOutbound:
		if d.Recipient == "" {
			return &ValidationError{Field: "recipient", Reason: "出库必须填写领用人"}
		}
		if d.Purpose == "" {
			return &ValidationError{Field: "purpose", Reason: "出库必须填写用途"}
		}
		if d.Supplier != "" {
			return &ValidationError{Field: "supplier", Reason: "出库不允许填写供应商"}
		}
	}
	return nil
}

// Record 单笔入账
func (s *LedgerService) Record(draft TransactionDraft) (*entity.Transaction, error) {
	return s.record(draft, nil)
}

func (s *LedgerService) record(draft TransactionDraft, reversalOf *string) (*entity.Transaction, error) {
	if draft.Date.IsZero() {
		draft.Date = time.Now()
	}
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}

	if _, err := s.itemRepo.FindByID(draft.ItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "物品", ID: draft.ItemID}
		}
		return nil, err
	}
	loc, err := s.locRepo.FindByID(draft.LocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "库位", ID: draft.LocationID}
		}
		return nil, err
	}
	if !loc.IsActive {
		return nil, &ValidationError{Field: "location_id", Reason: "库位已停用"}
	}

	record := &entity.Transaction{
		ID:         uuid.New().String(),
		ItemID:     draft.ItemID,
		LocationID: draft.LocationID,
		Type:       draft.Type,
		Quantity:   draft.Quantity,
		Date:       draft.Date,
		Operator:   draft.Operator,
		Supplier:   draft.Supplier,
		Recipient:  draft.Recipient,
		Purpose:    draft.Purpose,
		BatchID:    draft.BatchID,
		Notes:      draft.Notes,
		ReversalOf: reversalOf,
		CreatedAt:  time.Now(),
	}

	// 库存检查和写入是一个准入单元，锁内复读库存后再入账
	unlock := s.stockMu.Lock(draft.ItemID + "|" + draft.LocationID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 锁内复查被冲销流水：原流水须仍然存在且未被冲销过，
		// 并发的两次冲销只放行先到的一次
		if reversalOf != nil {
			var count int64
			if err := tx.Model(&entity.Transaction{}).Where("id = ?", *reversalOf).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return &NotFoundError{Resource: "流水", ID: *reversalOf}
			}
			reversals, err := repository.CountReversalsTx(tx, *reversalOf)
			if err != nil {
				return err
			}
			if reversals > 0 {
				return &ValidationError{Field: "transaction", Reason: "该流水已被冲销"}
			}
		}
		if draft.Type == entity.TxTypeOutbound {
			available, err := repository.SumQuantityTx(tx, draft.ItemID, draft.LocationID, nil)
			if err != nil {
				return err
			}
			if draft.Quantity > available {
				return &InsufficientStockError{Available: available, Requested: draft.Quantity}
			}
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// BatchReject 批量入账中被拒绝的条目
type BatchReject struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// BatchResult 批量入账结果。逐笔独立判定，部分成功不回滚已入账条目。
type BatchResult struct {
	BatchID  string               `json:"batch_id"`
	Accepted []entity.Transaction `json:"accepted"`
	Rejected []BatchReject        `json:"rejected"`
}

// RecordBatch 批量入账，同批条目共享一个批次号
func (s *LedgerService) RecordBatch(drafts []TransactionDraft, batchID string) (*BatchResult, error) {
	if len(drafts) == 0 {
		return nil, &ValidationError{Field: "transactions", Reason: "不能为空"}
	}
	if batchID == "" {
		batchID = uuid.New().String()
	}
	result := &BatchResult{
		BatchID:  batchID,
		Accepted: []entity.Transaction{},
		Rejected: []BatchReject{},
	}
	for i, draft := range drafts {
		draft.BatchID = batchID
		record, err := s.Record(draft)
		if err != nil {
			result.Rejected = append(result.Rejected, BatchReject{Index: i, Reason: err.Error()})
			continue
		}
		result.Accepted = append(result.Accepted, *record)
	}
	return result, nil
}

// Reverse 冲销：生成一笔类型相反、数量相同的流水抵消原流水，
// 不删除历史。超过冲销期限或已被冲销过的流水拒绝操作。
// 冲销入库本质上是一笔出库，同样要过库存准入。
func (s *LedgerService) Reverse(txID, operator string) (*entity.Transaction, error) {
	if operator == "" {
		return nil, &ValidationError{Field: "operator", Reason: "不能为空"}
	}
	original, err := s.txRepo.FindByID(txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "流水", ID: txID}
		}
		return nil, err
	}
	if time.Since(original.CreatedAt) > ReversalWindow {
		return nil, &ValidationError{Field: "transaction", Reason: "超过可冲销期限(30天)"}
	}
	reversals, err := s.txRepo.CountReversals(txID)
	if err != nil {
		return nil, err
	}
	if reversals > 0 {
		return nil, &ValidationError{Field: "transaction", Reason: "该流水已被冲销"}
	}

	draft := TransactionDraft{
		ItemID:     original.ItemID,
		LocationID: original.LocationID,
		Quantity:   original.Quantity,
		Date:       time.Now(),
		Operator:   operator,
		BatchID:    original.BatchID,
		Notes:      "冲销流水 " + original.ID,
	}
	if original.Type == entity.TxTypeInbound {
		draft.Type = entity.TxTypeOutbound
		draft.Recipient = original.Supplier
		draft.Purpose = "冲销入库"
	} else {
		draft.Type = entity.TxTypeInbound
		draft.Supplier = original.Recipient
	}
	return s.record(draft, &original.ID)
}

// AnnotationInput 可修正的备注类字段。物品、库位、类型、数量
// 一经入账不可变更。
type AnnotationInput struct {
	Operator  *string `json:"operator"`
	Supplier  *string `json:"supplier"`
	Recipient *string `json:"recipient"`
	Purpose   *string `json:"purpose"`
	Notes     *string `json:"notes"`
}

// UpdateAnnotations 修正备注类字段，类型配对规则仍然生效
func (s *LedgerService) UpdateAnnotations(txID string, input AnnotationInput) (*entity.Transaction, error) {
	record, err := s.txRepo.FindByID(txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "流水", ID: txID}
		}
		return nil, err
	}

	if input.Operator != nil {
		if *input.Operator == "" {
			return nil, &ValidationError{Field: "operator", Reason: "不能为空"}
		}
		record.Operator = *input.Operator
	}
	if input.Supplier != nil {
		if record.Type == entity.TxTypeOutbound && *input.Supplier != "" {
			return nil, &ValidationError{Field: "supplier", Reason: "出库不允许填写供应商"}
		}
		if record.Type == entity.TxTypeInbound && *input.Supplier == "" {
			return nil, &ValidationError{Field: "supplier", Reason: "入库必须填写供应商"}
		}
		record.Supplier = *input.Supplier
	}
	if input.Recipient != nil {
		if record.Type == entity.TxTypeInbound && *input.Recipient != "" {
			return nil, &ValidationError{Field: "recipient", Reason: "入库不允许填写领用人"}
		}
		if record.Type == entity.TxTypeOutbound && *input.Recipient == "" {
			return nil, &ValidationError{Field: "recipient", Reason: "出库必须填写领用人"}
		}
		record.Recipient = *input.Recipient
	}
	if input.Purpose != nil {
		if record.Type == entity.TxTypeOutbound && *input.Purpose == "" {
			return nil, &ValidationError{Field: "purpose", Reason: "出库必须填写用途"}
		}
		record.Purpose = *input.Purpose
	}
	if input.Notes != nil {
		record.Notes = *input.Notes
	}

	if err := s.txRepo.Update(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete 硬删除。仅当该流水未被冲销引用、且删除后对应库位库存
// 不会为负时允许；否则应走 Reverse。
func (s *LedgerService) Delete(txID string) error {
	record, err := s.txRepo.FindByID(txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "流水", ID: txID}
		}
		return err
	}

	unlock := s.stockMu.Lock(record.ItemID + "|" + record.LocationID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		// 冲销引用检查放在锁内，避免与并发冲销之间留下窗口
		reversals, err := repository.CountReversalsTx(tx, txID)
		if err != nil {
			return err
		}
		if reversals > 0 {
			return &ReferentialIntegrityError{Reason: "该流水已被冲销引用, 不能删除"}
		}

		available, err := repository.SumQuantityTx(tx, record.ItemID, record.LocationID, nil)
		if err != nil {
			return err
		}
		if available-record.SignedQuantity() < 0 {
			return &ReferentialIntegrityError{Reason: "删除后库存将为负, 请改用冲销"}
		}
		return tx.Delete(&entity.Transaction{}, "id = ?", txID).Error
	})
}

func (s *LedgerService) Get(txID string) (*entity.Transaction, error) {
	record, err := s.txRepo.FindByID(txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "流水", ID: txID}
		}
		return nil, err
	}
	return record, nil
}

func (s *LedgerService) List(params repository.TxListParams) ([]entity.Transaction, int64, error) {
	return s.txRepo.List(params)
}
