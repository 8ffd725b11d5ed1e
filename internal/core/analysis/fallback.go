package analysis

import "github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"

// Fallback devolve o documento de demonstração, usado quando não há dados
// suficientes ou quando a agregação falha. Cada chamada devolve uma cópia nova.
func Fallback() domain.MetricsDocument {
	return domain.MetricsDocument{
		PerformanceVsMeta: domain.PerformanceVsMeta{
			CurrentPerformance: 1850000,
			MetaTarget:         2200000,
			Percentage:         84.1,
		},
		GeographicDistribution: []domain.RegionShare{
			{Region: "São Paulo", Value: 650000, Percentage: 35.1},
			{Region: "Rio de Janeiro", Value: 420000, Percentage: 22.7},
			{Region: "Minas Gerais", Value: 380000, Percentage: 20.5},
			{Region: "Paraná", Value: 250000, Percentage: 13.5},
			{Region: "Outros", Value: 150000, Percentage: 8.1},
		},
		ExternalSellers: []domain.ExternalSeller{
			{Name: "João Silva", Sales: 180000, Growth: 12.5},
			{Name: "Maria Santos", Sales: 165000, Growth: 8.3},
			{Name: "Carlos Oliveira", Sales: 142000, Growth: 15.2},
			{Name: "Ana Costa", Sales: 128000, Growth: -2.1},
			{Name: "Pedro Lima", Sales: 115000, Growth: 22.8},
		},
		MainClients: []domain.ClientShare{
			{Client: "Empresa Alpha Ltda", Value: 295000, Percentage: 15.9},
			{Client: "Beta Indústria S/A", Value: 245000, Percentage: 13.2},
			{Client: "Gamma Corporation", Value: 185000, Percentage: 10.0},
			{Client: "Delta Comercial", Value: 165000, Percentage: 8.9},
			{Client: "Epsilon Group", Value: 145000, Percentage: 7.8},
		},
		ProductAnalysis: []domain.ProductSummary{
			{Product: "Produto A", Quantity: 1250, Revenue: 485000},
			{Product: "Produto B", Quantity: 890, Revenue: 398000},
			{Product: "Produto C", Quantity: 650, Revenue: 285000},
			{Product: "Produto D", Quantity: 420, Revenue: 195000},
			{Product: "Produto E", Quantity: 380, Revenue: 165000},
		},
		ProductionStatus: domain.ProductionStatus{
			Completed:  89,
			InProgress: 7,
			Delayed:    4,
		},
		KPIs: domain.KPIs{
			ConversionRate:  8.7,
			AverageTicket:   15800,
			ClientRetention: 92.3,
			SalesCycle:      18,
		},
	}
}
