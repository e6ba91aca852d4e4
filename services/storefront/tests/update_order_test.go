package tests

import (
	"errors"

	events "github.com/Kedar-sonavani/Kalashree-Collection/pkg/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
	"github.com/google/uuid"
)

func (s *IntegrationTestSuite) statusUpdate(status domain.OrderStatus) *domain.UpdateOrderInput {
	return &domain.UpdateOrderInput{Status: &status}
}

func (s *IntegrationTestSuite) TestUpdateOrder_CancelRestocks() {
	product := s.seedProduct("Kantha Cushion Cover", "650.00", 5)

	order, err := s.OrderService.Place(s.Ctx, s.orderInput("asha@example.com", line(product, 2)))
	s.Require().NoError(err)
	s.Require().Equal(3, s.stockOf(product.ID))

	updated, err := s.OrderService.Update(s.Ctx, order.ID, s.statusUpdate(domain.OrderStatusCancelled))
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusCancelled, updated.Status)
	s.Require().Equal(5, s.stockOf(product.ID))

	s.Require().Equal(1, s.countRows(
		`SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1 AND event_type = $2`,
		order.ID.String(), events.EventOrderStatusChanged,
	))
}

func (s *IntegrationTestSuite) TestUpdateOrder_TerminalStatusIsFinal() {
	product := s.seedProduct("Kantha Cushion Cover", "650.00", 5)

	order, err := s.OrderService.Place(s.Ctx, s.orderInput("asha@example.com", line(product, 1)))
	s.Require().NoError(err)

	_, err = s.OrderService.Update(s.Ctx, order.ID, s.statusUpdate(domain.OrderStatusDelivered))
	s.Require().NoError(err)

	_, err = s.OrderService.Update(s.Ctx, order.ID, s.statusUpdate(domain.OrderStatusCancelled))
	s.Require().Error(err)
	s.Require().True(errors.Is(err, service.ErrInvalidTransition))

	// Delivered orders never give stock back.
	s.Require().Equal(4, s.stockOf(product.ID))
}

func (s *IntegrationTestSuite) TestUpdateOrder_BackwardsMoveRejected() {
	product := s.seedProduct("Kantha Cushion Cover", "650.00", 5)

	order, err := s.OrderService.Place(s.Ctx, s.orderInput("asha@example.com", line(product, 1)))
	s.Require().NoError(err)

	_, err = s.OrderService.Update(s.Ctx, order.ID, s.statusUpdate(domain.OrderStatusShipped))
	s.Require().NoError(err)

	_, err = s.OrderService.Update(s.Ctx, order.ID, s.statusUpdate(domain.OrderStatusPending))
	s.Require().True(errors.Is(err, service.ErrInvalidTransition))
}

func (s *IntegrationTestSuite) TestUpdateOrder_NotesOnlyEmitsNothing() {
	product := s.seedProduct("Kantha Cushion Cover", "650.00", 5)

	order, err := s.OrderService.Place(s.Ctx, s.orderInput("asha@example.com", line(product, 1)))
	s.Require().NoError(err)

	notes := "Gift wrap requested"
	updated, err := s.OrderService.Update(s.Ctx, order.ID, &domain.UpdateOrderInput{AdminNotes: &notes})
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusPending, updated.Status)
	s.Require().Equal(notes, updated.AdminNotes)

	s.Require().Zero(s.countRows(
		`SELECT COUNT(*) FROM outbox WHERE event_type = $1`, events.EventOrderStatusChanged,
	))
}

func (s *IntegrationTestSuite) TestUpdateOrder_NotFound() {
	_, err := s.OrderService.Update(s.Ctx, uuid.New(), s.statusUpdate(domain.OrderStatusProcessing))
	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrOrderNotFound))

	_, err = s.OrderService.Items(s.Ctx, uuid.New())
	s.Require().True(errors.Is(err, repository.ErrOrderNotFound))
}

func (s *IntegrationTestSuite) TestOrderItems_ImmutableSnapshot() {
	product := s.seedProduct("Kantha Cushion Cover", "650.00", 5)

	order, err := s.OrderService.Place(s.Ctx, s.orderInput("asha@example.com", line(product, 1)))
	s.Require().NoError(err)

	_, err = s.DbPool.Exec(s.Ctx, `UPDATE order_items SET price_at_purchase = 1 WHERE order_id = $1`, order.ID)
	s.Require().Error(err)
}
