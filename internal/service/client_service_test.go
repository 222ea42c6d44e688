package service_test

import (
	"context"
	"testing"

	"delipos/internal/apperr"
	"delipos/internal/service"

	"github.com/stretchr/testify/require"
)

func TestDeleteClientWithOutstandingDebtRefused(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Longaniza", "10", "10")
	client := f.createClient(t, "Irma")

	f.creditSale(t, client.ID, product.ID, "2", "10")

	err := f.clients.DeleteClient(context.Background(), client.ID)
	require.ErrorIs(t, err, apperr.ErrOutstandingDebt)

	// Settle and the delete goes through.
	_, err = f.ledger.ApplyPayment(context.Background(), service.ApplyPaymentRequest{ClientID: client.ID, Amount: "20"})
	require.NoError(t, err)
	require.NoError(t, f.clients.DeleteClient(context.Background(), client.ID))
}

func TestCreateClientRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	f.createClient(t, "Jorge")

	_, err := f.clients.CreateClient(context.Background(), service.CreateClientRequest{Name: "Jorge"})
	require.ErrorIs(t, err, apperr.ErrDuplicateName)
}

func TestAvailableCreditClampsAtZero(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Sopressata", "10", "100")
	client, err := f.clients.CreateClient(context.Background(), service.CreateClientRequest{
		Name: "Karina", CreditLimit: "30",
	})
	require.NoError(t, err)

	available, err := f.clients.AvailableCredit(context.Background(), client.ID)
	require.NoError(t, err)
	requireDecimal(t, "30", available)

	// Limit is advisory by default, so debt can exceed it.
	f.creditSale(t, client.ID, product.ID, "5", "10")

	available, err = f.clients.AvailableCredit(context.Background(), client.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", available)
}

func TestCanBuy(t *testing.T) {
	f := newFixture(t)
	client, err := f.clients.CreateClient(context.Background(), service.CreateClientRequest{
		Name: "Lucia", CreditLimit: "50",
	})
	require.NoError(t, err)

	ok, err := f.clients.CanBuy(context.Background(), client.ID, "50")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.clients.CanBuy(context.Background(), client.ID, "51")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.clients.CanBuy(context.Background(), client.ID, "-1")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSearchClientsByPhone(t *testing.T) {
	f := newFixture(t)
	_, err := f.clients.CreateClient(context.Background(), service.CreateClientRequest{
		Name: "Marta", Phone: "11-5555-0001",
	})
	require.NoError(t, err)
	f.createClient(t, "Nora")

	found, total, err := f.clients.SearchClients(context.Background(), "5555", 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	require.Equal(t, "Marta", found[0].Name)
}
