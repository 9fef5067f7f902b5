package eastmoney

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"StockPulse/pkg/util"
)

// optFloat decodes a number, a numeric string or a placeholder such as "-".
// Placeholders and null decode to an absent value.
type optFloat struct {
	v *float64
}

func (f *optFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.v = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.v = util.ParseOptionalFloat(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cannot unmarshal %s into float64", string(data))
	}
	f.v = &n
	return nil
}

// Ptr returns a fresh pointer so records never share storage.
func (f optFloat) Ptr() *float64 {
	if f.v == nil {
		return nil
	}
	v := *f.v
	return &v
}

// flexString accepts both JSON strings and numbers (codes sometimes arrive unquoted).
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(data)
	return nil
}

// snapshot endpoint (push2 clist/get)

type snapshotResponse struct {
	RC   int           `json:"rc"`
	Data *snapshotData `json:"data"`
}

type snapshotData struct {
	Total int         `json:"total"`
	Diff  snapshotRow `json:"diff"`
}

type snapshotField struct {
	Price         optFloat   `json:"f2"`
	ChangePercent optFloat   `json:"f3"`
	TradedValue   optFloat   `json:"f6"`
	TurnoverRate  optFloat   `json:"f8"`
	PEDynamic     optFloat   `json:"f9"`
	VolumeRatio   optFloat   `json:"f10"`
	Code          flexString `json:"f12"`
	Name          string     `json:"f14"`
	MarketCap     optFloat   `json:"f20"`
	PB            optFloat   `json:"f23"`
	BidAskRatio   optFloat   `json:"f33"`
}

// snapshotRow is the diff payload: an array with np=1, an index-keyed object otherwise.
type snapshotRow []snapshotField

func (r *snapshotRow) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	if data[0] == '[' {
		var rows []snapshotField
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		*r = rows
		return nil
	}
	var keyed map[string]snapshotField
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	rows := make([]snapshotField, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, keyed[k])
	}
	*r = rows
	return nil
}

// datacenter endpoint (RPT_* report queries)

type datacenterResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  *struct {
		Pages int `json:"pages"`
		Count int `json:"count"`
		Data  []T `json:"data"`
	} `json:"result"`
}

type valuationRow struct {
	TradeDate string   `json:"TRADE_DATE"`
	PETTM     optFloat `json:"PE_TTM"`
	PBMRQ     optFloat `json:"PB_MRQ"`
}

type financeRow struct {
	ReportDate      string   `json:"REPORT_DATE"`
	ROE             optFloat `json:"ROEJQ"`
	NetProfitGrowth optFloat `json:"PARENTNETPROFITTZ"`
}

// news endpoint (np-listapi)

type newsResponse struct {
	Code    flexString `json:"code"`
	Message string     `json:"message"`
	Data    *struct {
		List []newsRow `json:"list"`
	} `json:"data"`
}

type newsRow struct {
	Title     string `json:"title"`
	ShowTime  string `json:"showTime"`
	MediaName string `json:"mediaName"`
	URL       string `json:"url"`
}
