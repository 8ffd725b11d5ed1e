package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ValueKind identifica o tipo guardado em um Value.
type ValueKind uint8

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
)

// Value é o conteúdo de uma célula: número, texto ou vazio.
// Células vazias são serializadas como "" (nunca null).
type Value struct {
	kind ValueKind
	num  float64
	text string
}

func Empty() Value        { return Value{} }
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number guarda f como número. NaN e infinitos viram célula vazia, assim
// somas e JSON nunca recebem valores não finitos.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Empty()
	}
	return Value{kind: KindNumber, num: f}
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsEmpty() bool   { return v.kind == KindEmpty || (v.kind == KindText && v.text == "") }

// String devolve a representação textual, usada como chave de agrupamento.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	}
	return ""
}

// Float converte o valor para número. Texto é aceito tanto no formato
// "1234.56" quanto no formato brasileiro "1.234,56"; o resto vira 0.
func (v Value) Float() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		f, err := ParseNumber(v.text)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// ParseNumber interpreta um número vindo de uma célula de texto.
func ParseNumber(val string) (float64, error) {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0, fmt.Errorf("valor vazio")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("valor não numérico: %s", val)
	}
	return f, nil
}

// Native converte para os tipos aceitos pelos drivers de banco (float64 ou string).
func (v Value) Native() interface{} {
	if v.kind == KindNumber {
		return v.num
	}
	return v.String()
}

// ValueOf reconstrói um Value a partir de um valor lido do banco ou de JSON.
func ValueOf(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return Empty()
	case Value:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case bool:
		if x {
			return Text("TRUE")
		}
		return Text("FALSE")
	case string:
		if x == "" {
			return Empty()
		}
		return Text(x)
	}
	return Text(fmt.Sprint(raw))
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// NativeReport converte o relatório para mapas simples, no formato
// aceito por Firestore e MongoDB.
func NativeReport(d DecodedReport) map[string]interface{} {
	out := map[string]interface{}{"success": d.Success}
	if d.Error != "" {
		out["error"] = d.Error
	}
	if d.RawText != "" {
		out["raw_text"] = d.RawText
	}
	if d.ExtractedValues != nil {
		ev := make(map[string]interface{}, len(d.ExtractedValues))
		for k, v := range d.ExtractedValues {
			ev[k] = v
		}
		out["extracted_values"] = ev
	}
	if d.Sheets != nil {
		sheets := make(map[string]interface{}, len(d.Sheets))
		for name, rows := range d.Sheets {
			list := make([]interface{}, 0, len(rows))
			for _, rec := range rows {
				m := make(map[string]interface{}, len(rec))
				for k, val := range rec {
					m[k] = val.Native()
				}
				list = append(list, m)
			}
			sheets[name] = list
		}
		out["sheets"] = sheets
	}
	return out
}

// ReportFromNative faz o caminho inverso de NativeReport.
func ReportFromNative(m map[string]interface{}) DecodedReport {
	var d DecodedReport
	if m == nil {
		return d
	}
	d.Success, _ = m["success"].(bool)
	d.Error, _ = m["error"].(string)
	d.RawText, _ = m["raw_text"].(string)
	if ev, ok := asMap(m["extracted_values"]); ok {
		d.ExtractedValues = make(map[string]string, len(ev))
		for k, v := range ev {
			d.ExtractedValues[k] = fmt.Sprint(v)
		}
	}
	if sheets, ok := asMap(m["sheets"]); ok {
		d.Sheets = make(map[string]RecordSet, len(sheets))
		for name, rawRows := range sheets {
			rows := asSlice(rawRows)
			set := make(RecordSet, 0, len(rows))
			for _, rawRec := range rows {
				fields, _ := asMap(rawRec)
				rec := make(Record, len(fields))
				for k, v := range fields {
					rec[k] = ValueOf(v)
				}
				set = append(set, rec)
			}
			d.Sheets[name] = set
		}
	}
	return d
}

// asMap aceita tanto map[string]interface{} quanto tipos nomeados com a
// mesma forma (por exemplo bson.M).
func asMap(raw interface{}) (map[string]interface{}, bool) {
	if m, ok := raw.(map[string]interface{}); ok {
		return m, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func asSlice(raw interface{}) []interface{} {
	if s, ok := raw.([]interface{}); ok {
		return s
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
