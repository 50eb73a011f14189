package engine

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/mgarrido/supplysim/internal/entity"
	"github.com/mgarrido/supplysim/internal/store"
)

// productRefPattern matches the two legacy product-id token forms that
// may appear in externally supplied detail strings: "ID <n>" and
// "producto <n>".
var productRefPattern = regexp.MustCompile(`(ID|producto) (\d+)`)

// logEvent appends one audit record inside the caller's transaction.
//
// Engine call sites compose details with product names already resolved,
// so for them this is a plain append. Details that still carry numeric
// product-id tokens (collaborators that only hold ids) have each token
// substituted with the product's name at write time; tokens referencing
// products that no longer exist are stored verbatim.
//
// An append failure aborts the surrounding phase: the transaction rolls
// back and the error propagates. The audit trail is load-bearing, so
// logging is never best-effort.
func logEvent(ctx context.Context, tx *store.Store, r *dayRun, typ, detail string) error {
	detail, err := resolveProductRefs(ctx, tx, detail)
	if err != nil {
		return err
	}
	return tx.AppendEvent(ctx, entity.Event{
		RunToken: r.token,
		Type:     typ,
		SimDay:   r.day,
		Detail:   detail,
	})
}

// resolveProductRefs substitutes product-id tokens in a detail string
// with product names: "ID 7" becomes the bare name, "producto 7" becomes
// "producto <name>". Unresolvable tokens are left untouched.
func resolveProductRefs(ctx context.Context, tx *store.Store, detail string) (string, error) {
	matches := productRefPattern.FindAllStringSubmatch(detail, -1)
	if matches == nil {
		return detail, nil
	}

	for _, m := range matches {
		id, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			continue
		}
		product, err := tx.ProductByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // product gone, keep the token verbatim
			}
			return "", err
		}

		switch m[1] {
		case "ID":
			detail = strings.ReplaceAll(detail, "ID "+m[2], product.Name)
		case "producto":
			detail = strings.ReplaceAll(detail, "producto "+m[2], "producto "+product.Name)
		}
	}
	return detail, nil
}
