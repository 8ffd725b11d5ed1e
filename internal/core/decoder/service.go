package decoder

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
	"github.com/ledongthuc/pdf"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// dateLayout é o formato textual de células de data/hora.
const dateLayout = "2006-01-02 15:04:05"

// SourceKind indica como o arquivo enviado deve ser lido.
type SourceKind int

const (
	SourceSpreadsheet SourceKind = iota
	SourceDocument
)

// KindFromFilename escolhe o tipo de leitura pela extensão: .pdf é documento,
// qualquer outra coisa é tratada como planilha.
func KindFromFilename(name string) SourceKind {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return SourceDocument
	}
	return SourceSpreadsheet
}

// Service define a interface de leitura dos relatórios enviados.
type Service interface {
	// Decode nunca devolve erro: falhas viram {success:false, error}.
	Decode(data []byte, kind SourceKind) domain.DecodedReport
}

type service struct{}

// NewService cria uma nova instância do leitor de relatórios.
func NewService() Service {
	return &service{}
}

func failure(err error) domain.DecodedReport {
	return domain.DecodedReport{Success: false, Error: err.Error()}
}

func (svc *service) Decode(data []byte, kind SourceKind) (report domain.DecodedReport) {
	defer func() {
		if r := recover(); r != nil {
			report = failure(fmt.Errorf("falha inesperada ao ler arquivo: %v", r))
		}
	}()

	if kind == SourceDocument {
		return svc.decodePDF(data)
	}
	return svc.decodeSpreadsheet(data)
}

// #############################################################################
// #                               PLANILHAS                                   #
// #############################################################################

func (svc *service) decodeSpreadsheet(data []byte) domain.DecodedReport {
	sheets, err := svc.readXLSX(data)
	if err != nil {
		// Pode ser um .xls antigo
		legacy, errXLS := svc.readXLS(data)
		if errXLS != nil {
			return failure(fmt.Errorf("não foi possível ler a planilha: %w", err))
		}
		sheets = legacy
	}
	return domain.DecodedReport{Sheets: sheets, Success: true}
}

func (svc *service) readXLSX(data []byte) (map[string]domain.RecordSet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	styles := newStyleCache(f)
	out := make(map[string]domain.RecordSet)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("erro ao ler a aba %s: %w", name, err)
		}
		sheet := name
		out[name] = svc.buildRecords(rows, func(col, row int, raw string) domain.Value {
			return svc.xlsxCell(f, styles, sheet, col, row, raw)
		})
	}
	return out, nil
}

// xlsxCell converte o valor bruto de uma célula respeitando o tipo gravado no arquivo.
func (svc *service) xlsxCell(f *excelize.File, styles *styleCache, sheet string, col, row int, raw string) domain.Value {
	if raw == "" {
		return domain.Empty()
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return svc.textCell(0, 0, raw)
	}
	cellType, _ := f.GetCellType(sheet, cell)
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return domain.Text(raw)
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "TRUE") {
			return domain.Text("TRUE")
		}
		return domain.Text("FALSE")
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return domain.Text(t.Format(dateLayout))
		}
		return domain.Text(raw)
	}

	num, ok := parseFinite(raw)
	if !ok {
		return domain.Text(raw)
	}
	if styles.isDate(sheet, cell) {
		if t, err := excelize.ExcelDateToTime(num, false); err == nil {
			return domain.Text(t.Format(dateLayout))
		}
	}
	return domain.Number(num)
}

func (svc *service) readXLS(data []byte) (map[string]domain.RecordSet, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.RecordSet)
	for _, sheet := range workbook.GetSheets() {
		var rows [][]string
		for _, row := range sheet.GetRows() {
			var cols []string
			for _, cell := range row.GetCols() {
				cols = append(cols, cell.GetString())
			}
			rows = append(rows, cols)
		}
		out[sheet.GetName()] = svc.buildRecords(rows, svc.textCell)
	}
	return out, nil
}

// textCell é usado quando o arquivo não informa o tipo da célula.
func (svc *service) textCell(_, _ int, raw string) domain.Value {
	if raw == "" {
		return domain.Empty()
	}
	if num, ok := parseFinite(strings.TrimSpace(raw)); ok {
		return domain.Number(num)
	}
	return domain.Text(raw)
}

// parseFinite aceita só números finitos: "NaN", "Inf" e estouros continuam texto.
func parseFinite(raw string) (float64, bool) {
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}

// buildRecords usa a primeira linha não vazia como cabeçalho e transforma as
// demais em registros. Toda coluna do cabeçalho aparece em todo registro.
func (svc *service) buildRecords(rows [][]string, cell func(col, row int, raw string) domain.Value) domain.RecordSet {
	headerIdx := -1
	for i, row := range rows {
		if !isBlank(row) {
			headerIdx = i
			break
		}
	}
	set := domain.RecordSet{}
	if headerIdx == -1 {
		return set
	}

	header := svc.headerNames(rows[headerIdx])
	for r := headerIdx + 1; r < len(rows); r++ {
		row := rows[r]
		if isBlank(row) {
			continue
		}
		rec := make(domain.Record, len(header))
		for c, name := range header {
			v := domain.Empty()
			if c < len(row) {
				v = cell(c, r, row[c])
			}
			rec[name] = v
		}
		set = append(set, rec)
	}
	return set
}

// headerNames converte o cabeçalho em chaves de texto. Colunas sem nome viram
// "Unnamed: N" e nomes repetidos recebem sufixo ".1", ".2"...
func (svc *service) headerNames(row []string) []string {
	names := make([]string, len(row))
	seen := make(map[string]int)
	for i, h := range row {
		name := norm.NFC.String(h)
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// styleCache evita consultar o mesmo estilo para cada célula.
type styleCache struct {
	f      *excelize.File
	byID   map[int]bool
	quoted *regexp.Regexp
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{
		f:      f,
		byID:   make(map[int]bool),
		quoted: regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`),
	}
}

func (s *styleCache) isDate(sheet, cell string) bool {
	id, err := s.f.GetCellStyle(sheet, cell)
	if err != nil || id == 0 {
		return false
	}
	if v, ok := s.byID[id]; ok {
		return v
	}
	isDate := false
	if style, err := s.f.GetStyle(id); err == nil && style != nil {
		isDate = isBuiltInDateFormat(style.NumFmt)
		if !isDate && style.CustomNumFmt != nil {
			isDate = s.isDateFormatCode(*style.CustomNumFmt)
		}
	}
	s.byID[id] = isDate
	return isDate
}

func isBuiltInDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 27 && id <= 36) || (id >= 45 && id <= 47) || (id >= 50 && id <= 58)
}

// isDateFormatCode ignora trechos entre aspas, colchetes e escapes antes de
// procurar marcadores de data/hora.
func (s *styleCache) isDateFormatCode(code string) bool {
	stripped := strings.ToLower(s.quoted.ReplaceAllString(code, ""))
	return strings.ContainsAny(stripped, "ydhs")
}

// #############################################################################
// #                                   PDF                                     #
// #############################################################################

// decodePDF devolve apenas o texto concatenado das páginas; nenhum campo é extraído.
func (svc *service) decodePDF(data []byte) domain.DecodedReport {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return failure(fmt.Errorf("não foi possível abrir o PDF: %w", err))
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return failure(fmt.Errorf("erro ao extrair texto da página %d: %w", i, err))
		}
		text.WriteString(content)
	}

	return domain.DecodedReport{
		RawText:         text.String(),
		ExtractedValues: map[string]string{},
		Success:         true,
	}
}
