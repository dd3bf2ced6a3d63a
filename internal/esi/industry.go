package esi

import (
	"fmt"
	"time"

	"github.com/ChiefOmnicron/starfoundry-sub004/internal/industry"
)

const (
	costIndicesKey    = "industry:systems"
	adjustedPricesKey = "markets:prices"

	// ESI refreshes /industry/systems hourly and /markets/prices on
	// the daily downtime; half an hour keeps us comfortably fresh.
	costIndicesTTL    = time.Hour
	adjustedPricesTTL = 30 * time.Minute
)

type costIndexRow struct {
	SolarSystemID int32 `json:"solar_system_id"`
	CostIndices   []struct {
		Activity  string  `json:"activity"`
		CostIndex float64 `json:"cost_index"`
	} `json:"cost_indices"`
}

type adjustedPriceRow struct {
	TypeID        int32   `json:"type_id"`
	AdjustedPrice float64 `json:"adjusted_price"`
	AveragePrice  float64 `json:"average_price"`
}

// SystemCostIndices fetches the manufacturing and reaction cost index
// for every solar system, keyed by system id. Results are cached for
// an hour; concurrent callers share one fetch.
func (c *Client) SystemCostIndices() (map[int32]industry.SystemIndex, error) {
	if v, ok := c.refCache.Get(costIndicesKey); ok {
		return v.(map[int32]industry.SystemIndex), nil
	}

	v, err, _ := c.group.Do(costIndicesKey, func() (interface{}, error) {
		var rows []costIndexRow
		url := fmt.Sprintf("%s/industry/systems/?datasource=tranquility", c.baseURL)
		if err := c.GetJSON(url, &rows); err != nil {
			return nil, err
		}

		indices := make(map[int32]industry.SystemIndex, len(rows))
		for _, row := range rows {
			var idx industry.SystemIndex
			for _, ci := range row.CostIndices {
				switch ci.Activity {
				case "manufacturing":
					idx.Manufacturing = ci.CostIndex
				case "reaction":
					idx.Reaction = ci.CostIndex
				}
			}
			indices[row.SolarSystemID] = idx
		}
		c.refCache.Set(costIndicesKey, indices, costIndicesTTL)
		return indices, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[int32]industry.SystemIndex), nil
}

// AdjustedPrices fetches CCP's adjusted price for every type, the
// basis of job installation costs. Cached for 30 minutes.
func (c *Client) AdjustedPrices() (map[int32]float64, error) {
	if v, ok := c.refCache.Get(adjustedPricesKey); ok {
		return v.(map[int32]float64), nil
	}

	v, err, _ := c.group.Do(adjustedPricesKey, func() (interface{}, error) {
		var rows []adjustedPriceRow
		url := fmt.Sprintf("%s/markets/prices/?datasource=tranquility", c.baseURL)
		if err := c.GetJSON(url, &rows); err != nil {
			return nil, err
		}

		prices := make(map[int32]float64, len(rows))
		for _, row := range rows {
			prices[row.TypeID] = row.AdjustedPrice
		}
		c.refCache.Set(adjustedPricesKey, prices, adjustedPricesTTL)
		return prices, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[int32]float64), nil
}
