package cache

import (
	"path"
	"strings"
	"testing"
)

func TestProductKey(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want string
	}{
		{name: "small id", id: 1, want: "product:1"},
		{name: "large id", id: 982451653, want: "product:982451653"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProductKey(tt.id); got != tt.want {
				t.Errorf("ProductKey(%d) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestProductListKey_StableFieldOrder(t *testing.T) {
	tests := []struct {
		name   string
		params ListKeyParams
		want   string
	}{
		{
			name:   "defaults without category",
			params: ListKeyParams{Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "asc"},
			want:   "products:page:1:limit:10:sortBy:created_at:sortOrder:asc",
		},
		{
			name:   "category appended last",
			params: ListKeyParams{Page: 2, Limit: 25, SortBy: "price", SortOrder: "desc", Category: "books"},
			want:   "products:page:2:limit:25:sortBy:price:sortOrder:desc:category:books",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProductListKey(tt.params); got != tt.want {
				t.Errorf("ProductListKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProductListKey_Determinism(t *testing.T) {
	params := ListKeyParams{Page: 3, Limit: 50, SortBy: "name", SortOrder: "desc", Category: "toys"}

	first := ProductListKey(params)
	for i := 0; i < 100; i++ {
		if got := ProductListKey(params); got != first {
			t.Fatalf("key changed between calls: %q vs %q", got, first)
		}
	}
}

func TestProductListKey_ParameterDivergence(t *testing.T) {
	base := ListKeyParams{Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "asc", Category: "books"}

	variants := map[string]ListKeyParams{
		"page":       {Page: 2, Limit: 10, SortBy: "created_at", SortOrder: "asc", Category: "books"},
		"limit":      {Page: 1, Limit: 20, SortBy: "created_at", SortOrder: "asc", Category: "books"},
		"sortBy":     {Page: 1, Limit: 10, SortBy: "price", SortOrder: "asc", Category: "books"},
		"sortOrder":  {Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "desc", Category: "books"},
		"category":   {Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "asc", Category: "toys"},
		"noCategory": {Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "asc"},
	}

	baseKey := ProductListKey(base)
	for name, params := range variants {
		t.Run(name, func(t *testing.T) {
			if got := ProductListKey(params); got == baseKey {
				t.Errorf("variant %q produced the same key as the base params: %q", name, got)
			}
		})
	}
}

func TestProductListPattern_MatchesEveryListingKey(t *testing.T) {
	pattern := ProductListPattern()

	listings := []ListKeyParams{
		{Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "asc"},
		{Page: 9, Limit: 100, SortBy: "price", SortOrder: "desc", Category: "garden"},
	}
	for _, params := range listings {
		key := ProductListKey(params)
		ok, err := path.Match(pattern, key)
		if err != nil {
			t.Fatalf("pattern %q is not a valid glob: %v", pattern, err)
		}
		if !ok {
			t.Errorf("pattern %q does not match listing key %q", pattern, key)
		}
	}
}

func TestProductListPattern_DoesNotMatchEntityOrCartKeys(t *testing.T) {
	pattern := ProductListPattern()

	for _, key := range []string{ProductKey(1), ProductKey(10), CartKey("7"), CartKey("")} {
		ok, err := path.Match(pattern, key)
		if err != nil {
			t.Fatalf("pattern %q is not a valid glob: %v", pattern, err)
		}
		if ok {
			t.Errorf("pattern %q must not match %q", pattern, key)
		}
	}
}

func TestCartKey(t *testing.T) {
	tests := []struct {
		name  string
		owner string
		want  string
	}{
		{name: "authenticated owner", owner: "42", want: "cart:42"},
		{name: "empty owner maps to guest", owner: "", want: "cart:guest"},
		{name: "explicit guest", owner: GuestOwner, want: "cart:guest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CartKey(tt.owner); got != tt.want {
				t.Errorf("CartKey(%q) = %q, want %q", tt.owner, got, tt.want)
			}
		})
	}
}

func TestKeyPrefixes_ShareNoNamespace(t *testing.T) {
	// The listing wildcard relies on "products:" never prefixing a
	// single-product key.
	if strings.HasPrefix(ProductKey(123), ProductListKeyPrefix+KeySeparator) {
		t.Fatalf("single-product keys must not live under the listing prefix")
	}
}
