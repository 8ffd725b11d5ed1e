package decoder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// montarPlanilha grava as linhas em uma pasta de trabalho em memória.
func montarPlanilha(t *testing.T, sheets map[string][][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &rows[i]))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecodeSpreadsheet(t *testing.T) {
	svc := NewService()
	data := montarPlanilha(t, map[string][][]interface{}{
		domain.SheetVendas: {
			{"Cliente", "Descrição", "", "Vlr.Total", "Emissão", "Código"},
			{"ACME", "Bomba X", "obs", 1500.5, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "001"},
			{"Beta", nil, nil, 200},
			{nil, nil, nil, nil},
		},
	})

	report := svc.Decode(data, SourceSpreadsheet)
	require.True(t, report.Success, report.Error)

	rows := report.Sheet(domain.SheetVendas)
	require.Len(t, rows, 2, "linhas totalmente vazias devem ser ignoradas")

	first := rows[0]
	assert.Equal(t, domain.Text("ACME"), first["Cliente"])
	assert.Equal(t, domain.Number(1500.5), first["Vlr.Total"])
	assert.Equal(t, domain.Text("obs"), first["Unnamed: 2"])
	assert.Equal(t, domain.Text("2024-03-15 00:00:00"), first["Emissão"])
	assert.Equal(t, domain.Text("001"), first["Código"], "texto numérico continua texto")

	second := rows[1]
	assert.Len(t, second, 6, "toda coluna do cabeçalho aparece no registro")
	assert.True(t, second["Descrição"].IsEmpty())
	assert.True(t, second["Código"].IsEmpty())
	assert.Equal(t, 200.0, second["Vlr.Total"].Float())
}

func TestDecodeSpreadsheetAllSheets(t *testing.T) {
	svc := NewService()
	data := montarPlanilha(t, map[string][][]interface{}{
		domain.SheetPedidos: {
			{"VENDEDOR EXTERNO", "VLR. TOTAL", "UF", "STATUS"},
			{"JOAO", 100, "SP", "F"},
		},
		"Resumo": {
			{"Total"},
			{100},
		},
	})

	report := svc.Decode(data, SourceSpreadsheet)
	require.True(t, report.Success, report.Error)
	assert.Len(t, report.Sheets, 2)
	assert.Len(t, report.Sheet(domain.SheetPedidos), 1)
	assert.Len(t, report.Sheet("Resumo"), 1)
	assert.Nil(t, report.Sheet("inexistente"))
}

func TestDecodeLegacyXLS(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "planilha_antiga.xls"))
	require.NoError(t, err)

	report := NewService().Decode(data, SourceSpreadsheet)
	require.True(t, report.Success, report.Error)
	require.Len(t, report.Sheets, 1)

	// A primeira linha do arquivo é numérica e vira cabeçalho.
	rows := report.Sheet("Sheet1")
	require.Len(t, rows, 40)
	assert.Equal(t, domain.Number(4), rows[1]["2"])
	assert.Equal(t, domain.Number(2.1), rows[1]["0.1"])
	assert.Equal(t, domain.Text("String 3"), rows[1]["String 1"])
	assert.Equal(t, domain.Text("String 3"), rows[1]["String 1.1"])
	assert.True(t, rows[1]["Unnamed: 5"].IsEmpty())
}

func TestDecodePDF(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "relatorio.pdf"))
	require.NoError(t, err)

	report := NewService().Decode(data, SourceDocument)
	require.True(t, report.Success, report.Error)
	assert.Contains(t, report.RawText, "Relatorio 549")
	assert.NotNil(t, report.ExtractedValues)
	assert.Empty(t, report.ExtractedValues)
	assert.Nil(t, report.Sheets)
}

func TestTextCellKeepsNonFiniteAsText(t *testing.T) {
	svc := &service{}
	set := svc.buildRecords([][]string{
		{"Cliente", "Descrição", "Vlr.Total", "Qtde"},
		{"ACME", "Bomba", "NaN", "1"},
		{"Beta", "Inf", "-Infinity", " 2 "},
		{"Gama", "Motor", "1e999", "3"},
	}, svc.textCell)
	require.Len(t, set, 3)

	for _, rec := range set {
		assert.Equal(t, domain.KindText, rec["Vlr.Total"].Kind(), rec["Cliente"].String())
		assert.Equal(t, 0.0, rec["Vlr.Total"].Float())
	}
	assert.Equal(t, domain.Text("Inf"), set[1]["Descrição"])
	assert.Equal(t, domain.Number(2), set[1]["Qtde"])

	_, err := json.Marshal(domain.DecodedReport{Sheets: map[string]domain.RecordSet{domain.SheetVendas: set}, Success: true})
	assert.NoError(t, err)
}

func TestDecodeDuplicateHeaders(t *testing.T) {
	svc := &service{}
	names := svc.headerNames([]string{"UF", "UF", "", "UF"})
	assert.Equal(t, []string{"UF", "UF.1", "Unnamed: 2", "UF.2"}, names)
}

func TestDecodeInvalidBytes(t *testing.T) {
	svc := NewService()

	report := svc.Decode([]byte("isto não é uma planilha"), SourceSpreadsheet)
	assert.False(t, report.Success)
	assert.NotEmpty(t, report.Error)
	assert.Nil(t, report.Sheets)

	report = svc.Decode([]byte("%PDF-quebrado"), SourceDocument)
	assert.False(t, report.Success)
	assert.NotEmpty(t, report.Error)
}

func TestKindFromFilename(t *testing.T) {
	assert.Equal(t, SourceDocument, KindFromFilename("relatorio_530.pdf"))
	assert.Equal(t, SourceDocument, KindFromFilename("RELATORIO.PDF"))
	assert.Equal(t, SourceSpreadsheet, KindFromFilename("relatorio_549.xlsx"))
	assert.Equal(t, SourceSpreadsheet, KindFromFilename("antigo.xls"))
	assert.Equal(t, SourceSpreadsheet, KindFromFilename("sem_extensao"))
}

func TestIsDateFormatCode(t *testing.T) {
	s := newStyleCache(nil)
	assert.True(t, s.isDateFormatCode("dd/mm/yyyy"))
	assert.True(t, s.isDateFormatCode("[$-416]dd/mm/yyyy hh:mm"))
	assert.False(t, s.isDateFormatCode(`"R$ "#,##0.00`))
	assert.False(t, s.isDateFormatCode("#,##0.00;[Red]-#,##0.00"))
	assert.False(t, s.isDateFormatCode("General"))
}
