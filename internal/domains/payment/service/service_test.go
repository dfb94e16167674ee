package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"guesthouse/config"
	"guesthouse/infras/otel/mocks"
	txMocks "guesthouse/infras/postgres/mocks"
	bookingMocks "guesthouse/internal/domains/booking/mocks"
	bookingModel "guesthouse/internal/domains/booking/model"
	guestMocks "guesthouse/internal/domains/guest/mocks"
	laundryMocks "guesthouse/internal/domains/laundry/mocks"
	laundryModel "guesthouse/internal/domains/laundry/model"
	paymentMocks "guesthouse/internal/domains/payment/mocks"
	"guesthouse/internal/domains/payment/model"
	"guesthouse/internal/domains/payment/model/dto"
	"guesthouse/internal/domains/payment/service"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/event"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var actor = principal.Principal{UserID: "finance-1", Role: "finance", Source: principal.SourceToken}

type deps struct {
	repo    *paymentMocks.MockPayment
	booking *bookingMocks.MockBooking
	laundry *laundryMocks.MockLaundry
	guest   *guestMocks.MockGuest
	tx      *txMocks.Transactor
}

func newService(t *testing.T) (service.Payment, deps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := deps{
		repo:    paymentMocks.NewMockPayment(ctrl),
		booking: bookingMocks.NewMockBooking(ctrl),
		laundry: laundryMocks.NewMockLaundry(ctrl),
		guest:   guestMocks.NewMockGuest(ctrl),
		tx:      txMocks.NewTransactor(),
	}

	cfg := &config.Config{}
	svc := service.New(d.repo, d.booking, d.laundry, d.guest, d.tx, event.NewPublisher(cfg, nil, mocks.NewOtel()), cfg, mocks.NewOtel())

	return svc, d
}

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)

	return &d
}

// expectStored captures the inserted payment and serves it back on the follow-up read.
func expectStored(t *testing.T, d deps, check func(model.Payment)) {
	t.Helper()

	var stored model.Payment

	d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p model.Payment) error {
		check(p)
		stored = p

		return nil
	})
	d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, gDto.FilterGroup, ...string) (model.Payment, error) {
		return stored, nil
	})
}

func TestResolveServiceType(t *testing.T) {
	tests := []struct {
		name        string
		serviceType string
		bookingID   string
		want        string
		wantErr     bool
	}{
		{name: "defaults to room with a booking", bookingID: "b-1", want: model.ServiceRoom},
		{name: "defaults to other without a booking", want: model.ServiceOther},
		{name: "upper-cases", serviceType: "laundry", want: model.ServiceLaundry},
		{name: "unknown", serviceType: "spa", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.ResolveServiceType(tt.serviceType, tt.bookingID)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	got, err := service.NormalizeStatus("")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, got)

	got, err = service.NormalizeStatus("Unpaid")
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnpaid, got)

	_, err = service.NormalizeStatus("pending")
	assert.ErrorIs(t, err, service.ErrInvalidStatus)
}

func TestPaymentService_CreateRoom(t *testing.T) {
	booking := bookingModel.Booking{
		ID:        "b-1",
		GuestID:   "guest-1",
		RoomID:    "room-1",
		CheckIn:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
		RoomPrice: decimal.NewFromInt(1000),
	}

	t.Run("derives nights times rate", func(t *testing.T) {
		svc, d := newService(t)
		d.booking.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)
		expectStored(t, d, func(p model.Payment) {
			assert.True(t, decimal.NewFromInt(3000).Equal(p.Amount))
			assert.Equal(t, "guest-1", p.GuestID)
			assert.Equal(t, model.ServiceRoom, p.ServiceType)
			assert.Equal(t, model.StatusPaid, p.Status)
			require.NotNil(t, p.BookingID)
			assert.Nil(t, p.LaundryID)
		})

		res, err := svc.Create(context.Background(), actor, dto.CreatePaymentRequest{BookingID: "b-1", Method: model.MethodCash})
		require.NoError(t, err)
		assert.Equal(t, "guest-1", res.GuestID)
		assert.Equal(t, 1, d.tx.Calls)
	})

	t.Run("explicit amount wins", func(t *testing.T) {
		svc, d := newService(t)
		d.booking.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)
		expectStored(t, d, func(p model.Payment) {
			assert.True(t, decimal.NewFromInt(2500).Equal(p.Amount))
		})

		_, err := svc.Create(context.Background(), actor, dto.CreatePaymentRequest{BookingID: "b-1", Method: model.MethodCard, Amount: amount(2500)})
		require.NoError(t, err)
	})

	t.Run("second payment for the booking", func(t *testing.T) {
		svc, d := newService(t)
		paid := booking
		paymentID := "p-1"
		paid.PaymentID = &paymentID

		d.booking.EXPECT().Get(gomock.Any(), gomock.Any()).Return(paid, nil)

		_, err := svc.Create(context.Background(), actor, dto.CreatePaymentRequest{BookingID: "b-1", Method: model.MethodCash})
		assert.ErrorIs(t, err, service.ErrBookingPaid)
	})

	t.Run("concurrent duplicate caught by unique constraint", func(t *testing.T) {
		svc, d := newService(t)
		d.booking.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(failure.Conflict("record already exists"))

		_, err := svc.Create(context.Background(), actor, dto.CreatePaymentRequest{BookingID: "b-1", Method: model.MethodCash})
		assert.ErrorIs(t, err, service.ErrBookingPaid)
	})

	t.Run("missing booking id", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Create(context.Background(), actor, dto.CreatePaymentRequest{ServiceType: "ROOM", Method: model.MethodCash})
		assert.ErrorIs(t, err, service.ErrBookingRequired)
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc, d := newService(t)
		d.booking.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)

		_, err := svc.Create(context.Background(), actor, dto.CreatePaymentRequest{BookingID: "b-9", Method: model.MethodCash})
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestPaymentService_CreateLaundry(t *testing.T) {
	order := laundryModel.Laundry{ID: "l-1", GuestID: "guest-2", Price: decimal.NewFromInt(150)}

	t.Run("takes the order price and guest", func(t *testing.T) {
		svc, d := newService(t)
		d.laundry.EXPECT().Get(gomock.Any(), gomock.Any()).Return(order, nil)
		expectStored(t, d, func(p model.Payment) {
			assert.True(t, decimal.NewFromInt(150).Equal(p.Amount))
			assert.Equal(t, "guest-2", p.GuestID)
			require.NotNil(t, p.LaundryID)
			assert.Nil(t, p.BookingID)
		})

		_, err := svc.Create(context.Background(), actor, dto.CreatePaymentRequest{ServiceType: "laundry", LaundryID: "l-1", Method: model.MethodCash})
		require.NoError(t, err)
	})

	t.Run("negative amount", func(t *testing.T) {
		svc, d := newService(t)
		d.laundry.EXPECT().Get(gomock.Any(), gomock.Any()).Return(order, nil)

		_, err := svc.Create(context.Background(), actor, dto.CreatePaymentRequest{ServiceType: "LAUNDRY", LaundryID: "l-1", Method: model.MethodCash, Amount: amount(-1)})
		assert.ErrorIs(t, err, service.ErrInvalidAmount)
	})

	t.Run("already paid", func(t *testing.T) {
		svc, d := newService(t)
		paid := order
		paymentID := "p-2"
		paid.PaymentID = &paymentID
		d.laundry.EXPECT().Get(gomock.Any(), gomock.Any()).Return(paid, nil)

		_, err := svc.Create(context.Background(), actor, dto.CreatePaymentRequest{ServiceType: "LAUNDRY", LaundryID: "l-1", Method: model.MethodCash})
		assert.ErrorIs(t, err, service.ErrLaundryPaid)
	})
}

func TestPaymentService_CreateGuestCharge(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreatePaymentRequest
		setupMock func(d deps)
		wantErr   error
	}{
		{
			name:      "amount required",
			req:       dto.CreatePaymentRequest{ServiceType: "DINING", GuestID: "guest-1", Method: model.MethodCash},
			setupMock: func(deps) {},
			wantErr:   service.ErrAmountRequired,
		},
		{
			name:      "zero amount",
			req:       dto.CreatePaymentRequest{ServiceType: "DINING", GuestID: "guest-1", Method: model.MethodCash, Amount: amount(0)},
			setupMock: func(deps) {},
			wantErr:   service.ErrAmountRequired,
		},
		{
			name:      "guest required",
			req:       dto.CreatePaymentRequest{Method: model.MethodCash, Amount: amount(40)},
			setupMock: func(deps) {},
			wantErr:   service.ErrGuestRequired,
		},
		{
			name: "unknown guest",
			req:  dto.CreatePaymentRequest{GuestID: "guest-9", Method: model.MethodCash, Amount: amount(40)},
			setupMock: func(d deps) {
				d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr: service.ErrGuestNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			tt.setupMock(d)

			_, err := svc.Create(context.Background(), actor, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("repeatable dining charge", func(t *testing.T) {
		svc, d := newService(t)

		for range 2 {
			d.guest.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			expectStored(t, d, func(p model.Payment) {
				assert.Equal(t, model.ServiceDining, p.ServiceType)
				assert.Equal(t, "guest-1", p.GuestID)
			})

			_, err := svc.Create(context.Background(), actor, dto.CreatePaymentRequest{ServiceType: "dining", GuestID: "guest-1", Method: model.MethodMobile, Amount: amount(40)})
			require.NoError(t, err)
		}
	})
}

func TestPaymentService_Update(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc, d := newService(t)
		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := svc.Update(context.Background(), actor, "p-1", dto.UpdatePaymentRequest{Method: model.MethodCard})
		assert.ErrorIs(t, err, service.ErrPaymentNotFound)
	})

	t.Run("normalises status and clears description", func(t *testing.T) {
		svc, d := newService(t)
		empty := ""

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, model.StatusRefunded, fields[model.FieldStatus])
			assert.Contains(t, fields, model.FieldDescription)
			assert.Nil(t, fields[model.FieldDescription])
			assert.NotContains(t, fields, model.FieldAmount)

			return nil
		})
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Payment{ID: "p-1", Status: model.StatusRefunded}, nil)

		res, err := svc.Update(context.Background(), actor, "p-1", dto.UpdatePaymentRequest{Status: "Refunded", Description: &empty})
		require.NoError(t, err)
		assert.Equal(t, model.StatusRefunded, res.Status)
	})
}

func TestPaymentService_Delete(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	assert.ErrorIs(t, svc.Delete(context.Background(), actor, "p-1"), service.ErrPaymentNotFound)

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	d.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	assert.NoError(t, svc.Delete(context.Background(), actor, "p-1"))
}
