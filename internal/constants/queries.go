package constants

const (
	// Maker lookup for reconciliation: case-insensitive contains, first
	// match by catalog insertion order (lowest id) so results are
	// reproducible when several maker names overlap.
	FindMakerByName = `
	SELECT id, name FROM makers
	WHERE LOWER(name) LIKE '%' || LOWER($1) || '%'
	ORDER BY id ASC
	LIMIT 1
	`

	// Model lookup within a maker. The search term is only the first
	// whitespace token of the extracted model string.
	FindModelInMaker = `
	SELECT id, maker_id, name, genmodel_id FROM models
	WHERE maker_id = $1 AND LOWER(name) LIKE '%' || LOWER($2) || '%'
	ORDER BY id ASC
	LIMIT 1
	`

	GetModelByID = `
	SELECT id, maker_id, name, genmodel_id FROM models WHERE id = $1
	`

	GetMakerByID = `
	SELECT id, name FROM makers WHERE id = $1
	`

	ListMakers = `
	SELECT id, name FROM makers ORDER BY name ASC
	`

	ListModelsByMaker = `
	SELECT id, maker_id, name, genmodel_id FROM models
	WHERE maker_id = $1
	ORDER BY name ASC
	`

	GetPricePointsByModel = `
	SELECT model_id, year, entry_price, entry_price_eur FROM price_history
	WHERE model_id = $1
	ORDER BY year ASC
	`

	GetPricePointsByModels = `
	SELECT model_id, year, entry_price, entry_price_eur FROM price_history
	WHERE model_id IN (?)
	ORDER BY model_id ASC, year ASC
	`

	GetListingByID = `
	SELECT id, url, title, price_eur, currency, mileage_km, year, location,
	       description, images, specs, model_id, extracted_make, extracted_model
	FROM listings
	WHERE id = $1
	`

	GetUnmatchedListings = `
	SELECT id, title, extracted_make, extracted_model FROM listings
	WHERE model_id IS NULL
	ORDER BY id ASC
	`

	UpdateListingModelID = `
	UPDATE listings SET model_id = $1 WHERE id = $2
	`
)
