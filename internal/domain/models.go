// internal/domain/models.go
package domain

import (
	"io"
	"time"
)

// Nomes fixos das planilhas lidas de cada relatório.
const (
	SheetVendas  = "sheet1"    // Relatório 530: detalhe de vendas
	SheetPedidos = "Planilha1" // Relatório 549: pedidos / vendedores
)

// DefaultMetaValue é a meta usada quando nenhuma configuração foi salva.
const DefaultMetaValue = 2200000.0

// Record representa uma linha da planilha: nome da coluna -> valor da célula.
type Record map[string]Value

// RecordSet é a lista ordenada de linhas de uma planilha.
type RecordSet []Record

// Get devolve o valor da coluna, ou Empty se a coluna não existir.
func (r Record) Get(field string) Value {
	if v, ok := r[field]; ok {
		return v
	}
	return Empty()
}

// DecodedReport é o resultado da leitura de um arquivo enviado.
// Planilhas preenchem Sheets; PDFs preenchem RawText.
type DecodedReport struct {
	Sheets          map[string]RecordSet `json:"sheets,omitempty"`
	RawText         string               `json:"raw_text,omitempty"`
	ExtractedValues map[string]string    `json:"extracted_values,omitempty"`
	Success         bool                 `json:"success"`
	Error           string               `json:"error,omitempty"`
}

// Sheet devolve as linhas da planilha pelo nome (nil se ausente).
func (d DecodedReport) Sheet(name string) RecordSet {
	if d.Sheets == nil {
		return nil
	}
	return d.Sheets[name]
}

// UploadedFile é um arquivo recebido pela API, ainda não decodificado.
type UploadedFile struct {
	Filename string
	Content  io.Reader
}

// --- Documento de métricas ---

type PerformanceVsMeta struct {
	CurrentPerformance float64 `json:"current_performance" firestore:"current_performance" bson:"current_performance"`
	MetaTarget         float64 `json:"meta_target" firestore:"meta_target" bson:"meta_target"`
	Percentage         float64 `json:"percentage" firestore:"percentage" bson:"percentage"`
}

// RegionShare é serializado com a chave "state", que é o que o dashboard lê.
type RegionShare struct {
	Region     string  `json:"state" firestore:"state" bson:"state"`
	Value      float64 `json:"value" firestore:"value" bson:"value"`
	Percentage float64 `json:"percentage" firestore:"percentage" bson:"percentage"`
}

type ExternalSeller struct {
	Name   string  `json:"name" firestore:"name" bson:"name"`
	Sales  float64 `json:"sales" firestore:"sales" bson:"sales"`
	Growth float64 `json:"growth" firestore:"growth" bson:"growth"`
}

type ClientShare struct {
	Client     string  `json:"client" firestore:"client" bson:"client"`
	Value      float64 `json:"value" firestore:"value" bson:"value"`
	Percentage float64 `json:"percentage" firestore:"percentage" bson:"percentage"`
}

type ProductSummary struct {
	Product  string  `json:"product" firestore:"product" bson:"product"`
	Quantity int     `json:"quantity" firestore:"quantity" bson:"quantity"`
	Revenue  float64 `json:"revenue" firestore:"revenue" bson:"revenue"`
}

// ProductionStatus guarda percentuais arredondados; a soma pode não dar 100.
type ProductionStatus struct {
	Completed  float64 `json:"completed" firestore:"completed" bson:"completed"`
	InProgress float64 `json:"in_progress" firestore:"in_progress" bson:"in_progress"`
	Delayed    float64 `json:"delayed" firestore:"delayed" bson:"delayed"`
}

type KPIs struct {
	ConversionRate  float64 `json:"conversion_rate" firestore:"conversion_rate" bson:"conversion_rate"`
	AverageTicket   float64 `json:"average_ticket" firestore:"average_ticket" bson:"average_ticket"`
	ClientRetention float64 `json:"client_retention" firestore:"client_retention" bson:"client_retention"`
	SalesCycle      float64 `json:"sales_cycle" firestore:"sales_cycle" bson:"sales_cycle"`
}

// MetricsDocument é o documento usado pelos gráficos do dashboard.
type MetricsDocument struct {
	PerformanceVsMeta      PerformanceVsMeta `json:"performance_vs_meta" firestore:"performance_vs_meta" bson:"performance_vs_meta"`
	GeographicDistribution []RegionShare     `json:"geographic_distribution" firestore:"geographic_distribution" bson:"geographic_distribution"`
	ExternalSellers        []ExternalSeller  `json:"external_sellers" firestore:"external_sellers" bson:"external_sellers"`
	MainClients            []ClientShare     `json:"main_clients" firestore:"main_clients" bson:"main_clients"`
	ProductAnalysis        []ProductSummary  `json:"product_analysis" firestore:"product_analysis" bson:"product_analysis"`
	ProductionStatus       ProductionStatus  `json:"production_status" firestore:"production_status" bson:"production_status"`
	KPIs                   KPIs              `json:"kpis" firestore:"kpis" bson:"kpis"`
}

// NarrativeResult é a análise textual gerada pelo modelo de linguagem.
type NarrativeResult struct {
	Insights  string    `json:"ai_insights" firestore:"ai_insights" bson:"ai_insights"`
	Timestamp time.Time `json:"analysis_timestamp" firestore:"analysis_timestamp" bson:"analysis_timestamp"`
	Success   bool      `json:"success" firestore:"success" bson:"success"`
	Error     string    `json:"error,omitempty" firestore:"error,omitempty" bson:"error,omitempty"`
}

// AnalysisRecord é uma análise persistida. Nunca é atualizada depois de criada.
type AnalysisRecord struct {
	ID          string          `json:"id"`
	MonthYear   string          `json:"month_year"`
	SalesReport DecodedReport   `json:"report_530_data"`
	OrderReport DecodedReport   `json:"report_549_data"`
	AIAnalysis  NarrativeResult `json:"ai_analysis"`
	ChartsData  MetricsDocument `json:"charts_data"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TargetConfig é uma entrada do histórico de metas (somente inserção).
type TargetConfig struct {
	ID        string    `json:"id,omitempty" firestore:"id" bson:"id"`
	MetaValue float64   `json:"meta_value" firestore:"meta_value" bson:"meta_value"`
	CreatedAt time.Time `json:"created_at" firestore:"created_at" bson:"created_at"`
}

// IngestResult é o retorno do processamento de um par de relatórios.
type IngestResult struct {
	AnalysisID string          `json:"analysis_id"`
	ChartsData MetricsDocument `json:"charts_data"`
	AIAnalysis NarrativeResult `json:"ai_analysis"`
}

// User representa um usuário autorizado a alterar dados.
type User struct {
	Username     string   `json:"username" firestore:"username" bson:"username"`
	PasswordHash string   `json:"-" firestore:"passwordHash" bson:"passwordHash"`
	Roles        []string `json:"roles" firestore:"roles" bson:"roles"` // Array de permissões
}
