package ingest

import "testing"

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Pack", "pack_name"},
		{"Bundle Name", "pack_name"},
		{"Price (USD)", "price"},
		{"Price($)", "price"},
		{"Qty", "quantity"},
		{"Gems per Unit", "gem_per_unit"},
		{"Gem Per Unit", "gem_per_unit"},
		{"Type", "category"},
		{"Equivalent Gem Cost", "equivalent_gem_cost"},
		{"  Item  ", "item_name"},
	}
	for _, tc := range cases {
		if got := NormalizeHeader(tc.in); got != tc.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeRows(t *testing.T) {
	table := Table{
		Header:     []string{"pack_name", "item_name", "quantity", "price", "gem_per_unit"},
		Rows:       [][]string{{"Hero Pack", "Jessie Shard", "10", "$4.99", "150"}},
		RowNumbers: []int{2},
	}
	rows := Normalize(table, "fallback", "USD")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.PackName != "Hero Pack" || r.ItemName != "Jessie Shard" {
		t.Fatalf("unexpected names: %q / %q", r.PackName, r.ItemName)
	}
	if r.Quantity != 10 || r.Price != 4.99 {
		t.Fatalf("quantity/price = %v/%v, want 10/4.99", r.Quantity, r.Price)
	}
	if !r.Has("gem_per_unit") || r.Float("gem_per_unit") != 150 {
		t.Fatalf("gem_per_unit not carried: %v", r.Extra)
	}
	if r.SourceRow != 2 {
		t.Fatalf("source row = %d, want 2", r.SourceRow)
	}
}

func TestNormalizePackNameFallbacks(t *testing.T) {
	table := Table{
		Header:     []string{"event_shop", "item_name", "quantity"},
		Rows:       [][]string{{"Frost Event", "Speedup", "5"}, {"", "Shards", "3"}},
		RowNumbers: []int{2, 3},
	}
	rows := Normalize(table, "default-pack", "USD")
	if rows[0].PackName != "Frost Event" {
		t.Errorf("row 0 pack name = %q, want Frost Event", rows[0].PackName)
	}
	if rows[1].PackName != "default-pack" {
		t.Errorf("row 1 pack name = %q, want default-pack", rows[1].PackName)
	}

	shopTable := Table{
		Header:     []string{"shop_type", "item_name", "quantity"},
		Rows:       [][]string{{"Arena Shop", "Token", "100"}},
		RowNumbers: []int{2},
	}
	rows = Normalize(shopTable, "default-pack", "USD")
	if rows[0].PackName != "Arena Shop" {
		t.Errorf("shop_type fallback pack name = %q, want Arena Shop", rows[0].PackName)
	}
}

func TestNormalizeMissingItemName(t *testing.T) {
	table := Table{
		Header:     []string{"pack_name", "item_name", "quantity"},
		Rows:       [][]string{{"Pack", "", "1"}},
		RowNumbers: []int{2},
	}
	rows := Normalize(table, "", "USD")
	if rows[0].ItemName != "Unknown Item" {
		t.Errorf("item name = %q, want Unknown Item", rows[0].ItemName)
	}
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"4.99", 4.99},
		{"$4.99", 4.99},
		{"€5.99", 5.99},
		{"1,500", 1500},
		{"  12  ", 12},
		{"", 0},
		{"n/a", 0},
		{"free", 0},
	}
	for _, tc := range cases {
		if got := Coerce(tc.in); got != tc.want {
			t.Errorf("Coerce(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
