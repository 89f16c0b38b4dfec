// Package agriq answers free-text analytical questions about two
// mismatched government datasets: gridded daily rainfall and tabular
// district-level crop production.
//
// Usage:
//
//	reg, _ := taxonomy.Load()
//	res := taxonomy.NewResolver(reg)
//	store := dataset.NewStore(rainLoader, cropLoader, res)
//	c := composer.New(query.New(res), engine.New(store))
//
//	answer, err := c.Answer("Compare average annual rainfall in Tamil Nadu and Karnataka")
//
// A question is split into sub-questions, each classified into a typed
// intent, executed against a harmonized (region, year, crop, metric)
// table, and returned as an ordered list of answer fragments with
// citations. Partial failure of one sub-question never suppresses the
// others.
//
// The engine never calls any external service; all computation is local.
// Raw file decoding (NetCDF, spreadsheets) lives behind the loader
// interfaces in the dataset package; rendering is the caller's problem.
package agriq
