package service_test

import (
	"context"
	"testing"

	"delipos/internal/apperr"
	"delipos/internal/model"
	"delipos/internal/service"

	"github.com/stretchr/testify/require"
)

func TestCreateProductRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Queso Cremoso", "10", "0")

	_, err := f.catalog.CreateProduct(context.Background(), service.CreateProductRequest{
		Name: "queso cremoso", SalePrice: "12",
	})
	require.ErrorIs(t, err, apperr.ErrDuplicateName)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.CreateProduct(context.Background(), service.CreateProductRequest{
		Name: "  ", SalePrice: "10",
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.catalog.CreateProduct(context.Background(), service.CreateProductRequest{
		Name: "Salame", SalePrice: "0",
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.catalog.CreateProduct(context.Background(), service.CreateProductRequest{
		Name: "Salame", SalePrice: "10", Stock: "-1",
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateProductRejectsNameOfOtherProduct(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Queso Sardo", "10", "0")
	other := f.createProduct(t, "Queso Reggianito", "12", "0")

	_, err := f.catalog.UpdateProduct(context.Background(), other.ID, service.UpdateProductRequest{
		Name: "Queso Sardo", SalePrice: "12",
	})
	require.ErrorIs(t, err, apperr.ErrDuplicateName)

	// Renaming to its own name is fine.
	updated, err := f.catalog.UpdateProduct(context.Background(), other.ID, service.UpdateProductRequest{
		Name: "Queso Reggianito", SalePrice: "14",
	})
	require.NoError(t, err)
	requireDecimal(t, "14", updated.SalePrice)
}

func TestDeleteProductReferencedBySaleRefused(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Matambre", "10", "10")

	_, err := f.ledger.RecordSale(context.Background(), "", service.RecordSaleRequest{
		Lines:         []service.SaleLineRequest{{ProductID: product.ID, Quantity: "1", UnitPrice: "10"}},
		PaymentMethod: model.PaymentCash,
	})
	require.NoError(t, err)

	err = f.catalog.DeleteProduct(context.Background(), product.ID)
	require.ErrorIs(t, err, apperr.ErrReferencedEntity)
}

func TestDeleteUnreferencedProduct(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Bondiola", "10", "0")

	require.NoError(t, f.catalog.DeleteProduct(context.Background(), product.ID))
	_, err := f.catalog.GetProduct(context.Background(), product.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSearchByPrefix(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Queso Cremoso", "10", "0")
	f.createProduct(t, "Queso Sardo", "11", "0")
	f.createProduct(t, "Jamon Cocido", "12", "0")

	found, err := f.catalog.SearchByPrefix(context.Background(), "que", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
}

func TestImportRows(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Existing", "5", "1")

	outcomes, err := f.catalog.ImportRows(context.Background(), [][]string{
		{"name", "price", "stock"},
		{"Existing", "8", "3"},       // updated
		{"Brand New", "4", "2"},      // inserted
		{"", "4", "2"},               // empty name
		{"Bad Price", "zero", "2"},   // non-numeric
		{"brand new", "4", "2"},      // duplicate within the batch
		{"Short Row"},                // too few columns
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 6)

	require.Equal(t, service.ImportUpdated, outcomes[0].Result)
	require.Equal(t, service.ImportInserted, outcomes[1].Result)
	require.Equal(t, service.ImportRejected, outcomes[2].Result)
	require.Equal(t, service.ImportRejected, outcomes[3].Result)
	require.Equal(t, service.ImportRejected, outcomes[4].Result)
	require.Equal(t, service.ImportRejected, outcomes[5].Result)

	existing, err := f.catalog.GetProductByName(context.Background(), "Existing")
	require.NoError(t, err)
	requireDecimal(t, "8", existing.SalePrice)
	requireDecimal(t, "3", existing.Stock)
}

func TestImportRowsRejectsBadHeader(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.ImportRows(context.Background(), [][]string{{"nombre", "precio", "stock"}})
	require.ErrorIs(t, err, apperr.ErrValidation)
}
