package models

import (
	"encoding/json"
	"time"
)

// Envelope is the wire shape of every module API response. Code 0 means success.
type Envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Record is a module row as it travels over the wire: field names are module specific.
type Record map[string]any

type Page struct {
	Total     int      `json:"total"`
	PageSize  int      `json:"pageSize"`
	TotalPage int      `json:"totalPage"`
	CurrPage  int      `json:"currPage"`
	List      []Record `json:"list"`
}

type ModuleRecord struct {
	ID      int64
	Module  string
	Data    Record
	AddTime time.Time
}
