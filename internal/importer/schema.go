package importer

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// CUE schemas for the three import document shapes. Definitions are
// closed, so unknown fields are rejected, and Concrete validation
// rejects missing required fields.
const (
	planSchema = `
#Plan: {
	capacity_per_day: int & >0
	models: [string]: {
		bom: [string]: int & >0
	}
	plan: [...{
		day: int & >0
		orders: [...{
			model:    string
			quantity: int & >0
		}]
	}]
}
`

	providersSchema = `
#Providers: {
	providers: [...{
		name: string
		materials: [string]: {
			unit_cost:      number & >=0
			lead_time_days: int & >=0
		}
	}]
}
`

	inventorySchema = `
#Inventory: [string]: int & >=0
`
)

// validateDocument checks raw JSON against the named definition in the
// given schema source. Returns a descriptive error on any violation;
// callers treat that as fatal and write nothing.
func validateDocument(schemaSrc, defName string, raw []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath(defName))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup %s: %w", defName, err)
	}

	// JSON is a subset of CUE, so the document compiles directly.
	doc := ctx.CompileBytes(raw)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("document does not match %s: %w", defName, err)
	}
	return nil
}
