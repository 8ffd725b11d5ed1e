package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linha monta um registro a partir de pares campo/valor.
func linha(pairs ...interface{}) domain.Record {
	rec := domain.Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		rec[pairs[i].(string)] = domain.ValueOf(pairs[i+1])
	}
	return rec
}

func venda(cliente, produto string, valor, qtd interface{}) domain.Record {
	return linha(FieldCliente, cliente, FieldProduto, produto, FieldValorVenda, valor, FieldQuantidade, qtd)
}

func pedido(vendedor, uf, status string, valor interface{}) domain.Record {
	return linha(FieldVendedor, vendedor, FieldUF, uf, FieldStatus, status, FieldValorPedido, valor)
}

func TestAggregateEmptyInputsUseFallback(t *testing.T) {
	svc := NewService()
	someOrders := domain.RecordSet{pedido("JOAO", "SP", "F", 10.0)}
	someSales := domain.RecordSet{venda("ACME", "Bomba", 10.0, 1.0)}

	assert.Equal(t, Fallback(), svc.Aggregate(nil, nil, 2200000))
	assert.Equal(t, Fallback(), svc.Aggregate(domain.RecordSet{}, someOrders, 2200000))
	assert.Equal(t, Fallback(), svc.Aggregate(someSales, nil, 2200000))

	_, err := Compute(nil, someOrders, 1)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAggregatePerformanceVsMeta(t *testing.T) {
	sales := domain.RecordSet{
		venda("ACME", "Bomba A", 1000000.0, 1.0),
		venda("Beta", "Bomba B", 850000.0, 1.0),
	}
	orders := domain.RecordSet{pedido("JOAO", "SP", "F", 1.0)}

	doc, err := Compute(sales, orders, 2200000)
	require.NoError(t, err)
	assert.Equal(t, 1850000.0, doc.PerformanceVsMeta.CurrentPerformance)
	assert.Equal(t, 2200000.0, doc.PerformanceVsMeta.MetaTarget)
	assert.Equal(t, 84.1, doc.PerformanceVsMeta.Percentage)

	doc, err = Compute(sales, orders, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, doc.PerformanceVsMeta.Percentage)
}

func TestAggregateNonNumericValuesCountAsZero(t *testing.T) {
	sales := domain.RecordSet{
		venda("ACME", "Bomba", "1.234,56", 2.0),
		venda("ACME", "Bomba", "n/d", 1.0),
		venda("ACME", "Bomba", "", 1.0),
		venda("ACME", "Bomba", "100.5", 1.0),
	}
	orders := domain.RecordSet{pedido("JOAO", "SP", "F", 1.0)}

	doc, err := Compute(sales, orders, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 1335.06, doc.PerformanceVsMeta.CurrentPerformance, 1e-9)
	require.Len(t, doc.ProductAnalysis, 1)
	assert.Equal(t, 3, doc.ProductAnalysis[0].Quantity, "linhas sem valor não somam quantidade")
}

func TestAggregateExternalSellersExcludeInternal(t *testing.T) {
	sales := domain.RecordSet{venda("ACME", "Bomba", 100.0, 1.0)}

	onlyInternal := domain.RecordSet{
		pedido(InternalSeller, "SP", "F", 500.0),
		pedido(InternalSeller, "RJ", "F", 300.0),
	}
	doc, err := Compute(sales, onlyInternal, 1000)
	require.NoError(t, err)
	assert.NotNil(t, doc.ExternalSellers)
	assert.Empty(t, doc.ExternalSellers)

	mixed := domain.RecordSet{
		pedido("MARIA", "SP", "F", 100.0),
		pedido(InternalSeller, "SP", "F", 900.0),
		pedido("JOAO", "RJ", "L", 300.0),
		pedido("MARIA", "MG", "V", 250.0),
	}
	doc, err = Compute(sales, mixed, 1000)
	require.NoError(t, err)
	require.Len(t, doc.ExternalSellers, 2)
	assert.Equal(t, domain.ExternalSeller{Name: "MARIA", Sales: 350, Growth: 0}, doc.ExternalSellers[0])
	assert.Equal(t, domain.ExternalSeller{Name: "JOAO", Sales: 300, Growth: 0}, doc.ExternalSellers[1])
}

func TestAggregateInternalSellerMatchesExactName(t *testing.T) {
	sales := domain.RecordSet{venda("ACME", "Bomba", 100.0, 1.0)}
	orders := domain.RecordSet{
		pedido(InternalSeller, "SP", "F", 900.0),
		pedido("Helibombas ", "SP", "F", 200.0),
		pedido("helibombas", "RJ", "F", 100.0),
	}

	doc, err := Compute(sales, orders, 1000)
	require.NoError(t, err)
	require.Len(t, doc.ExternalSellers, 2)
	assert.Equal(t, "Helibombas ", doc.ExternalSellers[0].Name)
	assert.Equal(t, "helibombas", doc.ExternalSellers[1].Name)
}

func TestAggregateGeographicUsesRegionalTotal(t *testing.T) {
	sales := domain.RecordSet{venda("ACME", "Bomba", 10000.0, 1.0)}
	orders := domain.RecordSet{
		pedido("A", "SP", "F", 300.0),
		pedido("B", "RJ", "F", 100.0),
		pedido("C", "", "F", 600.0), // sem UF: fora da distribuição
	}

	doc, err := Compute(sales, orders, 1000)
	require.NoError(t, err)
	require.Len(t, doc.GeographicDistribution, 2)
	assert.Equal(t, domain.RegionShare{Region: "SP", Value: 300, Percentage: 75}, doc.GeographicDistribution[0])
	assert.Equal(t, domain.RegionShare{Region: "RJ", Value: 100, Percentage: 25}, doc.GeographicDistribution[1])
}

func TestAggregateListsAreCappedSortedAndStable(t *testing.T) {
	var sales domain.RecordSet
	var orders domain.RecordSet
	values := []float64{50, 700, 300, 700, 100, 900, 20, 300}
	for i, v := range values {
		name := fmt.Sprintf("C%d", i)
		sales = append(sales, venda(name, "P"+name, v, 1.0))
		orders = append(orders, pedido("V"+name, "U"+name, "F", v))
	}

	doc, err := Compute(sales, orders, 1000)
	require.NoError(t, err)

	require.Len(t, doc.MainClients, 5)
	var clients []string
	for i, c := range doc.MainClients {
		clients = append(clients, c.Client)
		if i > 0 {
			assert.GreaterOrEqual(t, doc.MainClients[i-1].Value, c.Value)
		}
	}
	// Empates (700 e 300) mantêm a ordem das linhas.
	assert.Equal(t, []string{"C5", "C1", "C3", "C2", "C7"}, clients)

	assert.Len(t, doc.ExternalSellers, 5)
	assert.Equal(t, "VC1", doc.ExternalSellers[1].Name)
	assert.Equal(t, "VC3", doc.ExternalSellers[2].Name)
	assert.Len(t, doc.GeographicDistribution, 5)
	assert.Len(t, doc.ProductAnalysis, 5)
	assert.Equal(t, "PC5", doc.ProductAnalysis[0].Product)

	for _, share := range doc.GeographicDistribution {
		assert.True(t, share.Percentage >= 0 && share.Percentage <= 100)
	}
	for _, share := range doc.MainClients {
		assert.True(t, share.Percentage >= 0 && share.Percentage <= 100)
	}
}

func TestAggregateMainClientsAndAverageTicket(t *testing.T) {
	orders := domain.RecordSet{pedido("JOAO", "SP", "F", 1.0)}

	doc, err := Compute(domain.RecordSet{venda("ACME", "Bomba", 1000.0, 1.0)}, orders, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, doc.KPIs.AverageTicket)
	assert.Equal(t, []domain.ClientShare{{Client: "ACME", Value: 1000, Percentage: 100}}, doc.MainClients)

	sales := domain.RecordSet{
		venda("ACME", "Bomba", 600.0, 1.0),
		venda("Beta", "Bomba", 300.0, 1.0),
		venda("ACME", "Bomba", 100.0, 1.0),
		venda("Gama", "Bomba", 0.0, 1.0),
	}
	doc, err = Compute(sales, orders, 1000)
	require.NoError(t, err)
	assert.Equal(t, 500.0, doc.KPIs.AverageTicket, "clientes sem valor não contam")
	assert.Equal(t, domain.ClientShare{Client: "ACME", Value: 700, Percentage: 70}, doc.MainClients[0])
	assert.Equal(t, 8.7, doc.KPIs.ConversionRate)
	assert.Equal(t, 92.3, doc.KPIs.ClientRetention)
	assert.Equal(t, 18.0, doc.KPIs.SalesCycle)
}

func TestAggregateProductNamesAreTruncated(t *testing.T) {
	long := "BOMBA CENTRIFUGA MONOESTAGIO 5CV TRIFASICA"
	exact := strings.Repeat("Ç", 30)
	sales := domain.RecordSet{
		venda("ACME", long, 500.0, 2.0),
		venda("ACME", exact, 400.0, 3.5),
	}
	orders := domain.RecordSet{pedido("JOAO", "SP", "F", 1.0)}

	doc, err := Compute(sales, orders, 1000)
	require.NoError(t, err)
	require.Len(t, doc.ProductAnalysis, 2)
	assert.Equal(t, "BOMBA CENTRIFUGA MONOESTAGIO 5...", doc.ProductAnalysis[0].Product)
	assert.Equal(t, exact, doc.ProductAnalysis[1].Product)
	assert.Equal(t, 3, doc.ProductAnalysis[1].Quantity)
}

func TestAggregateProductionStatus(t *testing.T) {
	sales := domain.RecordSet{venda("ACME", "Bomba", 100.0, 1.0)}
	orders := domain.RecordSet{
		pedido("A", "SP", "F", 1.0),
		pedido("B", "SP", "F", 1.0),
		pedido("C", "SP", "L", 1.0),
		pedido("D", "SP", "X", 1.0),
		pedido("E", "SP", "", 1.0),
	}

	doc, err := Compute(sales, orders, 1000)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductionStatus{Completed: 50, InProgress: 25, Delayed: 0}, doc.ProductionStatus)

	// 1/3 de cada: os arredondamentos não precisam fechar 100.
	orders = domain.RecordSet{
		pedido("A", "SP", "F", 1.0),
		pedido("B", "SP", "L", 1.0),
		pedido("C", "SP", "V", 1.0),
	}
	doc, err = Compute(sales, orders, 1000)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductionStatus{Completed: 33, InProgress: 33, Delayed: 33}, doc.ProductionStatus)

	// Status numérico zero conta como ausente.
	orders = domain.RecordSet{
		pedido("A", "SP", "F", 1.0),
		linha(FieldVendedor, "B", FieldUF, "SP", FieldStatus, 0.0, FieldValorPedido, 1.0),
		linha(FieldVendedor, "C", FieldUF, "SP", FieldStatus, int64(0), FieldValorPedido, 1.0),
	}
	doc, err = Compute(sales, orders, 1000)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductionStatus{Completed: 100, InProgress: 0, Delayed: 0}, doc.ProductionStatus)
}

func TestFallbackIsFixed(t *testing.T) {
	doc := Fallback()
	assert.Equal(t, 84.1, doc.PerformanceVsMeta.Percentage)
	assert.Len(t, doc.GeographicDistribution, 5)
	assert.Equal(t, "São Paulo", doc.GeographicDistribution[0].Region)
	assert.Equal(t, "Pedro Lima", doc.ExternalSellers[4].Name)
	assert.Equal(t, domain.ProductionStatus{Completed: 89, InProgress: 7, Delayed: 4}, doc.ProductionStatus)
	assert.Equal(t, 15800.0, doc.KPIs.AverageTicket)

	// Alterar uma cópia não afeta as próximas.
	doc.MainClients[0].Client = "outro"
	assert.Equal(t, "Empresa Alpha Ltda", Fallback().MainClients[0].Client)
}

func TestOrFallback(t *testing.T) {
	computed := domain.MetricsDocument{KPIs: domain.KPIs{AverageTicket: 1}}
	assert.Equal(t, computed, OrFallback(computed, nil))
	assert.Equal(t, Fallback(), OrFallback(computed, fmt.Errorf("falhou")))
}
