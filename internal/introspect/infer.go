package introspect

import "strings"

// InferRelationships proposes relationships from column naming conventions
// and type compatibility, for databases where constraints are missing or the
// dialect cannot express them. Every proposal carries a confidence tier so
// the consuming UI can rank or filter it: inference is advisory, never
// asserted as fact.
//
// Three rules run over every non-primary-key column of every table:
//
//	A: "user_id"  -> user / users / userses-style pluralization  (high)
//	B: "userid"   -> user / users                                (medium)
//	C: "user"     -> a table named user or users                 (low)
//
// The rules fire independently: one column can yield several proposals, and
// proposals may duplicate declared foreign keys. The caller keeps both lists
// side by side on purpose; collapsing them would hide information the UI
// wants to surface.
func InferRelationships(schemas []TableSchema) []Relationship {
	byName := make(map[string]*TableSchema, len(schemas))
	for i := range schemas {
		byName[schemas[i].TableName] = &schemas[i]
	}

	var rels []Relationship
	for i := range schemas {
		ts := &schemas[i]
		for _, col := range ts.Columns {
			// A table's own primary key is never a referencing column;
			// treating it as one produces self-referential false positives.
			if col.IsPrimaryKey {
				continue
			}

			name := strings.ToLower(col.Name)

			// Rule A: explicit "_id" suffix.
			if stem, ok := strings.CutSuffix(name, "_id"); ok && stem != "" {
				if rel := matchCandidates(byName, ts.TableName, col, []string{stem, stem + "s", stem + "es"}, ConfidenceHigh); rel != nil {
					rels = append(rels, *rel)
				}
			}

			// Rule B: bare "id" suffix, but not the column "id" itself.
			if stem, ok := strings.CutSuffix(name, "id"); ok && stem != "" {
				if rel := matchCandidates(byName, ts.TableName, col, []string{stem, stem + "s"}, ConfidenceMedium); rel != nil {
					rels = append(rels, *rel)
				}
			}

			// Rule C: column named after a table or its singular form.
			for j := range schemas {
				target := &schemas[j]
				singular := strings.TrimSuffix(target.TableName, "s")
				if name != target.TableName && name != singular {
					continue
				}
				if pkCol, ok := firstCompatiblePK(target, col.DataType); ok {
					rels = append(rels, Relationship{
						TableName:     ts.TableName,
						ColumnName:    col.Name,
						ForeignTable:  target.TableName,
						ForeignColumn: pkCol,
						Type:          RelInferred,
						Confidence:    ConfidenceLow,
					})
				}
			}
		}
	}
	return rels
}

// matchCandidates tries candidate target table names in order and emits a
// relationship for the first one that exists and has a type-compatible
// primary key. A candidate that exists but is incompatible does not stop the
// search.
func matchCandidates(byName map[string]*TableSchema, table string, col ColumnInfo, candidates []string, conf Confidence) *Relationship {
	for _, candidate := range candidates {
		target, ok := byName[candidate]
		if !ok {
			continue
		}
		pkCol, ok := firstCompatiblePK(target, col.DataType)
		if !ok {
			continue
		}
		return &Relationship{
			TableName:     table,
			ColumnName:    col.Name,
			ForeignTable:  target.TableName,
			ForeignColumn: pkCol,
			Type:          RelInferred,
			Confidence:    conf,
		}
	}
	return nil
}

// firstCompatiblePK returns the name of the first primary-key column of the
// target table (in catalog order) whose type is compatible with colType.
func firstCompatiblePK(target *TableSchema, colType string) (string, bool) {
	for _, c := range target.Columns {
		if c.IsPrimaryKey && TypesCompatible(c.DataType, colType) {
			return c.Name, true
		}
	}
	return "", false
}
