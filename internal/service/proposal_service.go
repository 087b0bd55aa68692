package service

import (
	"context"

	"github.com/charmbracelet/log"

	"canvas/internal/domain"
	"canvas/internal/editor"
)

// ProposalService applies block data produced outside the editor, such as
// AI tool calls. Proposals carry no id; the service assigns one.
type ProposalService struct {
	store   *editor.Store
	emitter EventEmitter
	logger  *log.Logger
}

func NewProposalService(store *editor.Store, emitter EventEmitter, logger *log.Logger) *ProposalService {
	if logger == nil {
		logger = log.Default()
	}
	return &ProposalService{store: store, emitter: emitter, logger: logger}
}

// Propose decodes a block-minus-id JSON object, gives it a fresh id and adds
// it on top of the canvas. Invalid proposals leave the store unchanged.
func (s *ProposalService) Propose(ctx context.Context, raw []byte) (*domain.Block, error) {
	b, err := domain.DecodeProposal(raw)
	if err != nil {
		return nil, err
	}
	return s.ProposeBlock(ctx, b)
}

// ProposeBlock adds an already-built block under a fresh id.
func (s *ProposalService) ProposeBlock(ctx context.Context, b *domain.Block) (*domain.Block, error) {
	b = b.Clone()
	b.ID = domain.NewID()
	id, err := s.store.AddBlock(b)
	if err != nil {
		s.logger.Warn("proposal rejected", "type", b.Type(), "err", err)
		return nil, err
	}
	added, ok := s.store.Block(id)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeInternal, "block %s vanished after add", id)
	}
	s.logger.Info("block proposed", "id", id, "type", added.Type(), "label", added.Label)
	s.emitter.Emit(ctx, EventBlockProposed, added)
	return added, nil
}

// ProposeUpdate applies a partial update to an existing block.
func (s *ProposalService) ProposeUpdate(ctx context.Context, id string, patch domain.Patch) (*domain.Block, error) {
	ok, err := s.store.UpdateBlockValues(id, patch)
	if err != nil {
		s.logger.Warn("update rejected", "id", id, "err", err)
		return nil, err
	}
	if !ok {
		return nil, domain.NewError(domain.ErrCodeNotFound, "block %s not found", id)
	}
	updated, _ := s.store.Block(id)
	s.emitter.Emit(ctx, EventBlockUpdated, updated)
	return updated, nil
}
