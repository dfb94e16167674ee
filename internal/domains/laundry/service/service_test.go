package service_test

import (
	"context"
	"errors"
	"testing"

	"guesthouse/config"
	"guesthouse/infras/otel/mocks"
	txMocks "guesthouse/infras/postgres/mocks"
	guestMocks "guesthouse/internal/domains/guest/mocks"
	laundryMocks "guesthouse/internal/domains/laundry/mocks"
	"guesthouse/internal/domains/laundry/model"
	"guesthouse/internal/domains/laundry/model/dto"
	"guesthouse/internal/domains/laundry/service"
	paymentMocks "guesthouse/internal/domains/payment/mocks"
	paymentModel "guesthouse/internal/domains/payment/model"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/principal"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var actor = principal.Principal{UserID: "hk-1", Role: "housekeeping", Source: principal.SourceToken}

type deps struct {
	repo    *laundryMocks.MockLaundry
	payment *paymentMocks.MockPayment
	guest   *guestMocks.MockGuest
	tx      *txMocks.Transactor
}

func newService(t *testing.T) (service.Laundry, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := deps{
		repo:    laundryMocks.NewMockLaundry(ctrl),
		payment: paymentMocks.NewMockPayment(ctrl),
		guest:   guestMocks.NewMockGuest(ctrl),
		tx:      txMocks.NewTransactor(),
	}

	publisher := event.NewPublisher(&config.Config{}, nil, mocks.NewOtel())

	return service.New(d.repo, d.payment, d.guest, d.tx, publisher, mocks.NewOtel()), d
}

func TestLaundryService_CreateChargesGuest(t *testing.T) {
	svc, d := newService(t)
	req := dto.CreateLaundryRequest{GuestID: "guest-1", Items: "2 shirts", Price: decimal.NewFromInt(150)}

	var order model.Laundry

	d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, l model.Laundry) error {
		assert.Equal(t, model.StatusPending, l.Status)
		order = l

		return nil
	})
	d.payment.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p paymentModel.Payment) error {
		assert.True(t, decimal.NewFromInt(150).Equal(p.Amount))
		assert.Equal(t, paymentModel.MethodCash, p.Method)
		assert.Equal(t, paymentModel.StatusPaid, p.Status)
		assert.Equal(t, paymentModel.ServiceLaundry, p.ServiceType)
		assert.Equal(t, "guest-1", p.GuestID)
		require.NotNil(t, p.LaundryID)
		assert.Equal(t, order.ID, *p.LaundryID)
		require.NotNil(t, p.Description)
		assert.Equal(t, "Laundry charge", *p.Description)

		return nil
	})
	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, gDto.FilterGroup, ...string) (model.Laundry, error) {
		paid := paymentModel.StatusPaid
		order.PaymentStatus = &paid

		return order, nil
	})

	res, err := svc.Create(context.Background(), actor, req)
	require.NoError(t, err)
	assert.Equal(t, paymentModel.StatusPaid, res.PaymentStatus)
	assert.Equal(t, 1, d.tx.Calls)
}

func TestLaundryService_CreateFailsAsAWhole(t *testing.T) {
	svc, d := newService(t)

	d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	d.payment.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

	_, err := svc.Create(context.Background(), actor, dto.CreateLaundryRequest{GuestID: "guest-1", Items: "towels"})
	assert.Error(t, err)
}

func TestLaundryService_CreateUnknownGuest(t *testing.T) {
	svc, d := newService(t)

	d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

	_, err := svc.Create(context.Background(), actor, dto.CreateLaundryRequest{GuestID: "guest-9", Items: "towels"})
	assert.ErrorIs(t, err, service.ErrGuestNotFound)
}

func TestLaundryService_UpdateStatus(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	d.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
		assert.Equal(t, model.StatusDone, fields[model.FieldStatus])
		assert.NotContains(t, fields, model.FieldItems)

		return nil
	})
	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Laundry{ID: "l-1", Status: model.StatusDone}, nil)

	res, err := svc.UpdateStatus(context.Background(), actor, "l-1", dto.UpdateLaundryStatusRequest{Status: model.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, res.Status)
}

func TestLaundryService_Delete(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	assert.ErrorIs(t, svc.Delete(context.Background(), actor, "l-1"), service.ErrLaundryNotFound)

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	d.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	assert.NoError(t, svc.Delete(context.Background(), actor, "l-1"))
}
