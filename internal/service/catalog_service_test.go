package service

import (
	"context"
	"testing"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreateDesignRejectsDuplicateCode(t *testing.T) {
	f := newFixture(t)
	f.design(t, "D-100")

	dup := &model.Design{Code: "D-100", Colors: []string{"red"}, Sizes: []string{"L"}}
	err := f.catalog.CreateDesign(context.Background(), dup, testActor)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "unique", ve.Tag)
}

func TestCreateDesignValidates(t *testing.T) {
	f := newFixture(t)

	bad := &model.Design{Code: "D-1", Colors: []string{"red"}, Sizes: []string{"L"}, SalePrice: decimal.RequireFromString("-1")}
	err := f.catalog.CreateDesign(context.Background(), bad, testActor)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "dec_gte0", ve.Tag)

	noColors := &model.Design{Code: "D-2", Sizes: []string{"L"}}
	err = f.catalog.CreateDesign(context.Background(), noColors, testActor)
	require.ErrorAs(t, err, &ve)
}

func TestUpdateDesign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.design(t, "D-200")
	f.design(t, "D-201")

	req := *d
	req.Name = "Linen shirt v2"
	req.Code = "D-201"
	_, err := f.catalog.UpdateDesign(ctx, d.ID, &req, testActor)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	req.Code = "D-200"
	updated, err := f.catalog.UpdateDesign(ctx, d.ID, &req, testActor)
	require.NoError(t, err)
	require.Equal(t, "Linen shirt v2", updated.Name)

	_, err = f.catalog.UpdateDesign(ctx, uuid.New(), &req, testActor)
	require.ErrorIs(t, err, ErrDesignNotFound)
}

func TestCreateItemsFansOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.design(t, "D-300")

	items, err := f.catalog.CreateItems(ctx, &CreateItemsRequest{
		DesignID:     d.ID,
		Warehouses:   []model.Warehouse{model.WarehouseStoreA, model.WarehouseLiveStream},
		Colors:       []string{"black", "white"},
		Sizes:        []string{"M"},
		InitialStock: 5,
	}, testActor)
	require.NoError(t, err)
	require.Len(t, items, 4)

	got, err := f.catalog.GetDesign(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 20, got.Stock)
	require.Len(t, got.Items, 4)

	designs, err := f.catalog.ListDesigns(ctx)
	require.NoError(t, err)
	require.Len(t, designs, 1)
	require.Equal(t, 20, designs[0].Stock)

	// Overlapping with an existing unit rejects the whole batch.
	_, err = f.catalog.CreateItems(ctx, &CreateItemsRequest{
		DesignID:   d.ID,
		Warehouses: []model.Warehouse{model.WarehouseStoreB, model.WarehouseStoreA},
		Colors:     []string{"black"},
		Sizes:      []string{"M"},
	}, testActor)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "unique", ve.Tag)

	got, err = f.catalog.GetDesign(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 4)
}

func TestCreateItemsValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.design(t, "D-400")

	cases := []struct {
		name string
		req  CreateItemsRequest
		tag  string
	}{
		{"unknown warehouse", CreateItemsRequest{DesignID: d.ID, Warehouses: []model.Warehouse{"attic"}, Colors: []string{"black"}, Sizes: []string{"M"}}, "oneof"},
		{"foreign color", CreateItemsRequest{DesignID: d.ID, Warehouses: []model.Warehouse{"store_a"}, Colors: []string{"red"}, Sizes: []string{"M"}}, "design_color"},
		{"foreign size", CreateItemsRequest{DesignID: d.ID, Warehouses: []model.Warehouse{"store_a"}, Colors: []string{"black"}, Sizes: []string{"XL"}}, "design_size"},
		{"repeated unit", CreateItemsRequest{DesignID: d.ID, Warehouses: []model.Warehouse{"store_a"}, Colors: []string{"black", "black"}, Sizes: []string{"M"}}, "unique"},
		{"negative stock", CreateItemsRequest{DesignID: d.ID, Warehouses: []model.Warehouse{"store_a"}, Colors: []string{"black"}, Sizes: []string{"M"}, InitialStock: -1}, "gte"},
		{"no design", CreateItemsRequest{Warehouses: []model.Warehouse{"store_a"}, Colors: []string{"black"}, Sizes: []string{"M"}}, "uuid_required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.catalog.CreateItems(ctx, &tc.req, testActor)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.tag, ve.Tag)
		})
	}

	_, err := f.catalog.CreateItems(ctx, &CreateItemsRequest{
		DesignID: uuid.New(), Warehouses: []model.Warehouse{"store_a"}, Colors: []string{"black"}, Sizes: []string{"M"},
	}, testActor)
	require.ErrorIs(t, err, ErrDesignNotFound)
}
