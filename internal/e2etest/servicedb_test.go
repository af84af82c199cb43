package e2etest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/MikeRez0/smmrefund/internal/adapter/client/currency"
	"github.com/MikeRez0/smmrefund/internal/adapter/config"
	"github.com/MikeRez0/smmrefund/internal/adapter/storage"
	"github.com/MikeRez0/smmrefund/internal/adapter/storage/repository"
	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/port/mock"
	"github.com/MikeRez0/smmrefund/internal/core/service"
	"github.com/MikeRez0/smmrefund/internal/e2etest/testdb"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var dbtest *testdb.TestDBInstance

func setup() bool {
	var err error
	dbtest, err = testdb.NewTestDBInstance()
	if errors.Is(err, testdb.ErrNoDatabase) {
		log.Print("skipping e2e tests: ", err)
		return false
	}
	if err != nil {
		log.Fatal(err)
	}
	return true
}

func shutdown() {
	if dbtest != nil {
		dbtest.Down()
	}
}

func TestMain(m *testing.M) {
	if !setup() {
		os.Exit(0)
	}
	code := m.Run()
	shutdown()
	os.Exit(code)
}

type deps struct {
	repo     *repository.Repository
	provider *mock.MockProviderClient
	recon    *service.Reconciler
}

func getDeps(t *testing.T) *deps {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, dbtest.Truncate(ctx))

	db, err := storage.NewDBStorage(ctx, &config.Database{DSN: dbtest.DSN})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.RunMigrations())

	repo, err := repository.NewRepository(db)
	require.NoError(t, err)

	conv, err := currency.NewStaticConverter(&config.Ledger{ProviderCurrency: "USD", LedgerCurrency: "USD"})
	require.NoError(t, err)

	logger := zap.NewNop()
	ledger, err := service.NewLedger(repo, conv, logger)
	require.NoError(t, err)

	provider := mock.NewMockProviderClient(gomock.NewController(t))
	recon, err := service.NewReconciler(repo, provider, ledger, 4, logger)
	require.NoError(t, err)

	return &deps{repo: repo, provider: provider, recon: recon}
}

func (d *deps) order(t *testing.T, ext string, userID, quantity int64, charge string) *domain.Order {
	t.Helper()
	o, err := d.repo.CreateOrder(context.Background(), &domain.Order{
		ExternalOrderID: &ext,
		UserID:          userID,
		Quantity:        quantity,
		Charge:          decimal.MustParse(charge),
		Status:          domain.OrderStatusInProgress,
	})
	require.NoError(t, err)
	return o
}

func report(ext string, status domain.OrderStatus, rem int64) *domain.ProviderReport {
	return &domain.ProviderReport{ExternalOrderID: ext, Status: status, Remains: &rem}
}

func assertAmount(t *testing.T, exp string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, 0, decimal.MustParse(exp).Cmp(got), "expected %s, got %s", exp, got)
}

func TestServiceDB_CreateOrder(t *testing.T) {
	d := getDeps(t)

	o := d.order(t, "ext-1", 1, 100, "1.50")
	assert.Equal(t, domain.OrderStatusInProgress, o.Status)
	assertAmount(t, "0", o.RefundAmount)

	_, err := d.repo.CreateOrder(context.Background(), &domain.Order{
		ExternalOrderID: o.ExternalOrderID, UserID: 1, Quantity: 1, Charge: decimal.MustParse("1"),
	})
	assert.ErrorIs(t, err, domain.ErrConflictingData)
}

func TestServiceDB_CancelRefundOnce(t *testing.T) {
	d := getDeps(t)
	o := d.order(t, "ext-1", 7, 1000, "10.00")

	d.provider.EXPECT().Status(gomock.Any(), "ext-1").
		Return(report("ext-1", domain.OrderStatusCanceled, 1000), nil).Times(2)

	res, err := d.recon.RefreshOne(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRefunded, res.Outcome)

	res, err = d.recon.RefreshOne(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeUnchanged, res.Outcome)

	b, err := d.repo.ReadBalanceByUserID(context.Background(), 7)
	require.NoError(t, err)
	assertAmount(t, "10.00", b.Current)

	settlements, err := d.repo.ListSettlements(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, settlements, 1)
	assert.Equal(t, fmt.Sprintf("%d:%s", o.ID, domain.OrderStatusCanceled), settlements[0].IdempotencyKey)
}

func TestServiceDB_PartialThenManual(t *testing.T) {
	d := getDeps(t)
	o := d.order(t, "ext-1", 7, 1000, "10.00")

	d.provider.EXPECT().Status(gomock.Any(), "ext-1").
		Return(report("ext-1", domain.OrderStatusPartial, 250), nil)

	res, err := d.recon.RefreshOne(context.Background(), o.ID)
	require.NoError(t, err)
	assertAmount(t, "2.50", res.RefundAmount)

	res, err = d.recon.ManualRefund(context.Background(), o.ID, "")
	require.NoError(t, err)
	assertAmount(t, "7.50", res.RefundAmount)

	stored, err := d.repo.ReadOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRefunded, stored.Status)
	assert.Equal(t, 0, stored.RefundAmount.Cmp(stored.Charge))
	require.NotNil(t, stored.Remains)
	assert.Equal(t, int64(250), *stored.Remains)

	b, err := d.repo.ReadBalanceByUserID(context.Background(), 7)
	require.NoError(t, err)
	assertAmount(t, "10.00", b.Current)
}

func TestServiceDB_BulkRefresh(t *testing.T) {
	d := getDeps(t)

	ids := make([]int64, 0, 5)
	exts := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		ext := fmt.Sprintf("ext-%d", i)
		ids = append(ids, d.order(t, ext, 7, 1000, "10.00").ID)
		exts = append(exts, ext)
	}

	d.provider.EXPECT().StatusMany(gomock.Any(), exts).Return(map[string]domain.ProviderResult{
		"ext-1": {Report: report("ext-1", domain.OrderStatusCanceled, 1000)},
		"ext-2": {Report: report("ext-2", domain.OrderStatusPartial, 500)},
		"ext-3": {Err: domain.ErrProviderOrder},
		"ext-4": {Report: report("ext-4", domain.OrderStatusCompleted, 0)},
		"ext-5": {Report: report("ext-5", domain.OrderStatusCanceled, 1000)},
	})

	batch, err := d.recon.RefreshMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, batch.Total)
	assert.Equal(t, []int64{ids[2]}, batch.FailedIDs())
	assert.Equal(t, 3, batch.Refunded)
	assertAmount(t, "25.00", batch.RefundedAmount)

	// same user, concurrent credits must all land
	b, err := d.repo.ReadBalanceByUserID(context.Background(), 7)
	require.NoError(t, err)
	assertAmount(t, "25.00", b.Current)
}

func TestServiceDB_ConcurrentSettle(t *testing.T) {
	d := getDeps(t)
	o := d.order(t, "ext-1", 7, 1000, "10.00")

	const callers = 6
	d.provider.EXPECT().Status(gomock.Any(), "ext-1").
		Return(report("ext-1", domain.OrderStatusCanceled, 1000), nil).Times(callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.recon.RefreshOne(context.Background(), o.ID)
		}()
	}
	wg.Wait()

	settlements, err := d.repo.ListSettlements(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Len(t, settlements, 1)

	b, err := d.repo.ReadBalanceByUserID(context.Background(), 7)
	require.NoError(t, err)
	assertAmount(t, "10.00", b.Current)
}

func TestServiceDB_RefundCheckConstraint(t *testing.T) {
	d := getDeps(t)
	o := d.order(t, "ext-1", 7, 10, "1.00")

	_, err := d.repo.SettleOrder(context.Background(), o.ID, func(order *domain.Order) (*domain.Settlement, error) {
		order.RefundAmount = decimal.MustParse("2.00")
		order.Status = domain.OrderStatusRefunded
		return nil, nil
	})
	assert.ErrorIs(t, err, domain.ErrDataInvariant)

	stored, err := d.repo.ReadOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusInProgress, stored.Status)
}
