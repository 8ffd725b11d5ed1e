package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
	log "github.com/sirupsen/logrus"
)

// Campos do relatório 530 (detalhe de vendas).
const (
	FieldValorVenda = "Vlr.Total"
	FieldCliente    = "Cliente"
	FieldProduto    = "Descrição"
	FieldQuantidade = "Qtde"
)

// Campos do relatório 549 (pedidos / vendedores).
const (
	FieldVendedor    = "VENDEDOR EXTERNO"
	FieldValorPedido = "VLR. TOTAL"
	FieldUF          = "UF"
	FieldStatus      = "STATUS"
)

const (
	// InternalSeller representa o faturamento interno e não entra no ranking de vendedores externos.
	InternalSeller = "HELIBOMBAS"

	topN             = 5
	maxProductLength = 30

	statusCompleted  = "F"
	statusInProgress = "L"
	statusDelayed    = "V"

	// Ainda não há histórico para calcular estes indicadores.
	placeholderConversionRate  = 8.7
	placeholderClientRetention = 92.3
	placeholderSalesCycle      = 18
)

// ErrNoData indica que uma das planilhas está ausente ou vazia.
var ErrNoData = errors.New("planilhas de vendas ou pedidos sem dados")

// Service define a interface do agregador de métricas.
type Service interface {
	// Aggregate nunca falha: sem dados ou com erro, devolve Fallback().
	Aggregate(sales, orders domain.RecordSet, metaTarget float64) domain.MetricsDocument
}

type service struct{}

func NewService() Service {
	return &service{}
}

func (s *service) Aggregate(sales, orders domain.RecordSet, metaTarget float64) domain.MetricsDocument {
	return OrFallback(Compute(sales, orders, metaTarget))
}

// OrFallback devolve o documento calculado ou, se houve erro, o documento de demonstração.
func OrFallback(doc domain.MetricsDocument, err error) domain.MetricsDocument {
	if err != nil {
		if errors.Is(err, ErrNoData) {
			log.Info("Planilhas sem dados, usando métricas de demonstração")
		} else {
			log.WithError(err).Warn("Erro ao agregar relatórios, usando métricas de demonstração")
		}
		return Fallback()
	}
	return doc
}

// Compute calcula o documento de métricas. Qualquer pânico durante o cálculo
// é convertido em erro.
func Compute(sales, orders domain.RecordSet, metaTarget float64) (doc domain.MetricsDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("falha inesperada na agregação: %v", r)
		}
	}()

	if len(sales) == 0 || len(orders) == 0 {
		return domain.MetricsDocument{}, ErrNoData
	}

	totalSales := 0.0
	for _, row := range sales {
		totalSales += row.Get(FieldValorVenda).Float()
	}

	clients := groupBy(sales, FieldCliente, FieldValorVenda, "")
	products := groupBy(sales, FieldProduto, FieldValorVenda, FieldQuantidade)
	regions := groupBy(orders, FieldUF, FieldValorPedido, "")
	sellers := groupBy(orders, FieldVendedor, FieldValorPedido, "", InternalSeller)

	doc = domain.MetricsDocument{
		PerformanceVsMeta: domain.PerformanceVsMeta{
			CurrentPerformance: totalSales,
			MetaTarget:         metaTarget,
			Percentage:         percent(totalSales, metaTarget, 1),
		},
		GeographicDistribution: geographic(regions),
		ExternalSellers:        externalSellers(sellers),
		MainClients:            mainClients(clients, totalSales),
		ProductAnalysis:        productAnalysis(products),
		ProductionStatus:       productionStatus(orders),
		KPIs: domain.KPIs{
			ConversionRate:  placeholderConversionRate,
			AverageTicket:   averageTicket(totalSales, len(clients.groups)),
			ClientRetention: placeholderClientRetention,
			SalesCycle:      placeholderSalesCycle,
		},
	}
	return doc, nil
}

func geographic(g *grouper) []domain.RegionShare {
	total := g.total()
	if total == 0 {
		total = 1
	}
	out := make([]domain.RegionShare, 0, topN)
	for _, grp := range g.top(topN) {
		out = append(out, domain.RegionShare{
			Region:     grp.key,
			Value:      grp.value,
			Percentage: percent(grp.value, total, 1),
		})
	}
	return out
}

func externalSellers(g *grouper) []domain.ExternalSeller {
	out := make([]domain.ExternalSeller, 0, topN)
	for _, grp := range g.top(topN) {
		// Sem histórico não há crescimento.
		out = append(out, domain.ExternalSeller{Name: grp.key, Sales: grp.value, Growth: 0})
	}
	return out
}

func mainClients(g *grouper, totalSales float64) []domain.ClientShare {
	out := make([]domain.ClientShare, 0, topN)
	for _, grp := range g.top(topN) {
		out = append(out, domain.ClientShare{
			Client:     grp.key,
			Value:      grp.value,
			Percentage: percent(grp.value, totalSales, 1),
		})
	}
	return out
}

func productAnalysis(g *grouper) []domain.ProductSummary {
	out := make([]domain.ProductSummary, 0, topN)
	for _, grp := range g.top(topN) {
		out = append(out, domain.ProductSummary{
			Product:  truncate(grp.key, maxProductLength),
			Quantity: int(grp.quantity),
			Revenue:  grp.value,
		})
	}
	return out
}

// productionStatus conta apenas linhas com STATUS preenchido. Códigos
// desconhecidos entram no total, mas em nenhuma categoria.
func productionStatus(orders domain.RecordSet) domain.ProductionStatus {
	counts := make(map[string]int)
	total := 0
	for _, row := range orders {
		val := row.Get(FieldStatus)
		if val.Kind() == domain.KindNumber && val.Float() == 0 {
			continue
		}
		status := strings.TrimSpace(val.String())
		if status == "" {
			continue
		}
		counts[status]++
		total++
	}
	if total == 0 {
		total = 1
	}
	share := func(code string) float64 {
		return round(float64(counts[code])/float64(total)*100, 0)
	}
	return domain.ProductionStatus{
		Completed:  share(statusCompleted),
		InProgress: share(statusInProgress),
		Delayed:    share(statusDelayed),
	}
}

func averageTicket(totalSales float64, clients int) float64 {
	if clients == 0 {
		clients = 1
	}
	return round(totalSales/float64(clients), 2)
}

// percent devolve part/whole em percentual; 0 quando whole não é positivo.
func percent(part, whole float64, places int) float64 {
	if whole <= 0 {
		return 0
	}
	return round(part/whole*100, places)
}

func truncate(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max]) + "..."
}

func round(val float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(val*pow) / pow
}

// #############################################################################
// #                               AGRUPAMENTO                                 #
// #############################################################################

type group struct {
	key      string
	value    float64
	quantity float64
}

// grouper soma valores por chave mantendo a ordem em que as chaves aparecem,
// para que empates sigam a ordem das linhas.
type grouper struct {
	index  map[string]int
	groups []group
}

// groupBy agrupa as linhas pela coluna keyField somando valueField (e qtyField,
// se informado). Linhas sem chave, sem valor ou com chave excluída são ignoradas.
// A exclusão compara o texto exato da chave.
func groupBy(rows domain.RecordSet, keyField, valueField, qtyField string, exclude ...string) *grouper {
	g := &grouper{index: make(map[string]int)}
next:
	for _, row := range rows {
		keyVal := row.Get(keyField)
		if keyVal.IsEmpty() {
			continue
		}
		key := keyVal.String()
		for _, ex := range exclude {
			if key == ex {
				continue next
			}
		}
		value := row.Get(valueField).Float()
		if value == 0 {
			continue
		}
		qty := 0.0
		if qtyField != "" {
			qty = row.Get(qtyField).Float()
		}
		g.add(key, value, qty)
	}
	return g
}

func (g *grouper) add(key string, value, qty float64) {
	if i, ok := g.index[key]; ok {
		g.groups[i].value += value
		g.groups[i].quantity += qty
		return
	}
	g.index[key] = len(g.groups)
	g.groups = append(g.groups, group{key: key, value: value, quantity: qty})
}

func (g *grouper) total() float64 {
	sum := 0.0
	for _, grp := range g.groups {
		sum += grp.value
	}
	return sum
}

// top devolve os n maiores grupos por valor, em ordem decrescente e estável.
func (g *grouper) top(n int) []group {
	ranked := make([]group, len(g.groups))
	copy(ranked, g.groups)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].value > ranked[j].value })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
