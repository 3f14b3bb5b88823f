package pricefeeds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ContractName    = "price-feeds"
	ContractVersion = "0.1.0"
	idlVersion      = "1.0.0"
	draft07         = "http://json-schema.org/draft-07/schema#"
)

type jsonSchema = map[string]interface{}

func ref(name string) jsonSchema {
	return jsonSchema{"$ref": "#/definitions/" + name}
}

func stringSchema() jsonSchema {
	return jsonSchema{"type": "string"}
}

func object(required []string, properties jsonSchema) jsonSchema {
	if required == nil {
		required = []string{}
	}
	return jsonSchema{
		"type":                 "object",
		"required":             required,
		"properties":           properties,
		"additionalProperties": false,
	}
}

// variant is the schema of one arm of a tagged union: {"<tag>": body}
func variant(tag string, body jsonSchema) jsonSchema {
	return object([]string{tag}, jsonSchema{tag: body})
}

func definitions() jsonSchema {
	return jsonSchema{
		"Decimal256": jsonSchema{
			"description": "A fixed-point decimal value with 18 fractional digits, i.e. Decimal256(1_000_000_000_000_000_000) == 1.0\n\nThe greatest possible value that can be represented is 115792089237316195423570985008687907853269984665640564039457.584007913129639935 (which is (2^256 - 1) / 10^18)",
			"type":        "string",
		},
		"Uint128": jsonSchema{
			"description": "A thin wrapper around u128 that is using strings for JSON encoding/decoding, such that the full u128 range can be used for clients that convert JSON numbers to floats, like JavaScript and jq.",
			"type":        "string",
		},
		"Price": object([]string{"price"}, jsonSchema{
			"price": ref("Decimal256"),
		}),
		"PriceFeedReq": object([]string{"pairs"}, jsonSchema{
			"pairs": jsonSchema{"type": "array", "items": stringSchema()},
		}),
		"PriceFeedResponse": object([]string{"price", "symbol"}, jsonSchema{
			"price":  ref("Decimal256"),
			"symbol": stringSchema(),
		}),
		"PriceFeedsResponse": object([]string{"price_feeds"}, jsonSchema{
			"price_feeds": jsonSchema{"type": "array", "items": ref("PriceFeedResponse")},
		}),
	}
}

func instantiateSchema() jsonSchema {
	s := object([]string{"denom"}, jsonSchema{"denom": stringSchema()})
	s["$schema"] = draft07
	s["title"] = "InstantiateMsg"
	return s
}

func executeSchema() jsonSchema {
	symbolAndPrice := func() jsonSchema {
		return object([]string{"price", "symbol"}, jsonSchema{"price": ref("Price"), "symbol": stringSchema()})
	}

	return jsonSchema{
		"$schema": draft07,
		"title":   "ExecuteMsg",
		"oneOf": []jsonSchema{
			variant(TagPublishPrice, symbolAndPrice()),
			variant(TagUpdatePrice, symbolAndPrice()),
			variant(TagRequestPriceFeed, object([]string{"symbol"}, jsonSchema{"symbol": stringSchema()})),
			variant(TagRequestPriceFeeds, object([]string{"request"}, jsonSchema{"request": ref("PriceFeedReq")})),
			variant(TagReceivePrices, object([]string{"prices_response"}, jsonSchema{"prices_response": ref("PriceFeedsResponse")})),
			variant(TagReceivePrice, object([]string{"price_response"}, jsonSchema{"price_response": ref("PriceFeedResponse")})),
			variant(TagSetCostPerRequest, object([]string{"cost_per_request"}, jsonSchema{"cost_per_request": ref("Uint128")})),
			variant(TagChangeAdmin, object([]string{"address"}, jsonSchema{"address": stringSchema()})),
		},
		"definitions": definitions(),
	}
}

func querySchema() jsonSchema {
	return jsonSchema{
		"$schema": draft07,
		"title":   "QueryMsg",
		"oneOf": []jsonSchema{
			variant(TagGetAllSymbols, object(nil, jsonSchema{})),
		},
	}
}

// The contract declares an empty migrate enum, so no value matches.
func migrateSchema() jsonSchema {
	return jsonSchema{
		"$schema": draft07,
		"title":   "MigrateMsg",
		"type":    "string",
		"enum":    []string{},
	}
}

func allSymbolsResponseSchema() jsonSchema {
	return jsonSchema{
		"$schema": draft07,
		"title":   "Array_of_String",
		"type":    "array",
		"items":   stringSchema(),
	}
}

// Schema returns the contract API document in the cosmwasm-schema layout.
func Schema() map[string]interface{} {
	return jsonSchema{
		"contract_name":    ContractName,
		"contract_version": ContractVersion,
		"idl_version":      idlVersion,
		"instantiate":      instantiateSchema(),
		"execute":          executeSchema(),
		"query":            querySchema(),
		"migrate":          migrateSchema(),
		"sudo":             nil,
		"responses": jsonSchema{
			TagGetAllSymbols: allSymbolsResponseSchema(),
		},
	}
}

// WriteSchemaFiles writes <contract>.json and the raw per-message schemas under dir.
func WriteSchemaFiles(dir string) ([]string, error) {
	files := []struct {
		name string
		doc  interface{}
	}{
		{ContractName + ".json", Schema()},
		{filepath.Join("raw", "instantiate.json"), instantiateSchema()},
		{filepath.Join("raw", "execute.json"), executeSchema()},
		{filepath.Join("raw", "query.json"), querySchema()},
		{filepath.Join("raw", "migrate.json"), migrateSchema()},
		{filepath.Join("raw", "response_to_get_all_symbols.json"), allSymbolsResponseSchema()},
	}

	if err := os.MkdirAll(filepath.Join(dir, "raw"), 0o755); err != nil {
		return nil, fmt.Errorf("error creating schema dir: %w", err)
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		out, err := json.MarshalIndent(f.doc, "", "  ")
		if err != nil {
			return written, fmt.Errorf("error encoding %s: %w", f.name, err)
		}

		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil { //nolint:gosec
			return written, fmt.Errorf("error writing %s: %w", path, err)
		}
		written = append(written, path)
	}

	return written, nil
}
