// Package seed loads the agency's CEO decision-pattern corpus into a fresh
// store on first run, so retrieval has real judgment records to draw on
// before anyone has ingested a single chat or review.
package seed

import (
	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/embedding"
	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/store"
)

const (
	sourceType = "ceo_pattern_seed"
	sourceID   = "ceo_30_patterns_v1"
	decisionMaker = "김경신"
)

type pattern struct {
	content        string
	knowledgeType  string
	confidence     float64
	relevanceScore float64
	scopeLayer     *string
	dialecticTag   *string
	sourceContext  *string
}

// IsSeeded reports whether the CEO pattern corpus has already been loaded.
func IsSeeded(s *store.Store) (bool, error) {
	return s.IsExtracted(sourceType, sourceID)
}

// SeedCEOPatterns loads every CEO pattern into s, skipping if already
// seeded. Returns the number of items created (0 if already seeded).
func SeedCEOPatterns(s *store.Store, e *embedding.Embedder) (int, error) {
	already, err := IsSeeded(s)
	if err != nil {
		return 0, err
	}
	if already {
		return 0, nil
	}

	count := 0
	for _, p := range ceoPatterns() {
		item := &store.KnowledgeItem{
			Content:         p.content,
			KnowledgeType:   p.knowledgeType,
			SourceType:      sourceType,
			Scope:           "global",
			ScopeLayer:      p.scopeLayer,
			RoleTag:         strp("CEO"),
			DialecticTag:    p.dialecticTag,
			Confidence:      p.confidence,
			RelevanceScore:  p.relevanceScore,
			DecisionMaker:   strp(decisionMaker),
			Outcome:         strp("confirmed"),
			SourceID:        strp(sourceID),
			SourceContext:   p.sourceContext,
			IsActive:        true,
		}

		vec := e.Embed(p.content).Vector
		if err := s.CreateKnowledgeItem(item, vec); err != nil {
			return count, err
		}
		count++
	}

	if err := s.MarkExtracted(sourceType, sourceID, count); err != nil {
		return count, err
	}
	return count, nil
}

func strp(v string) *string { return &v }

func layer(v string) *string   { return &v }
func tag(v string) *string     { return &v }
func ctx(v string) *string     { return &v }

// ceoPatterns is the full corpus of 30 operational-wisdom records,
// covering budget/deal judgment, creative direction, pitch execution, and
// the CEO's per-role collaboration patterns.
func ceoPatterns() []pattern {
	return []pattern{
		{
			content:       "프로젝트 수주 결정 시 '내수율(수익률)' 기준으로 판단. 총 계약금액 대비 실제 내수가 30% 이하면 수주 거부 또는 재협상 요구. '돈 안 되는 일은 하지 않는다'는 원칙 고수.",
			knowledgeType: "deal_decision", confidence: 0.95, relevanceScore: 0.9,
			scopeLayer: layer("operations"), sourceContext: ctx(`{"reason":"수주 의사결정 시 내수율 기준 판단 패턴"}`),
		},
		{
			content:       "예산 협상 시 '목표 내수율'을 역산하여 견적 하한선을 설정. 인건비+외주비+관리비를 먼저 산출하고, 목표 수익률을 더한 금액이 최소 견적. 클라이언트가 예산을 낮추면 스코프 축소로 대응.",
			knowledgeType: "budget_decision", confidence: 0.92, relevanceScore: 0.9,
			scopeLayer: layer("operations"), sourceContext: ctx(`{"reason":"예산 협상 시 견적 하한선 산출 방식"}`),
		},
		{
			content:       "대금 결제 조건은 '3:3:4' 또는 '5:5' 구조 선호. 선금 비율이 30% 미만이면 리스크 경고. 촬영 전 잔금 완납 불가 시 촬영 일정 조정도 불사.",
			knowledgeType: "payment_tracking", confidence: 0.90, relevanceScore: 0.85,
			scopeLayer: layer("operations"), dialecticTag: tag("risk"),
			sourceContext: ctx(`{"reason":"대금 결제 조건 및 리스크 관리 패턴"}`),
		},
		{
			content:       "계약 리스크 판단: 독소조항(지재권 양도, 과도한 위약금) 발견 시 법무팀 검토 후 수정 요구. 양보 불가 조항 리스트를 사전에 관리.",
			knowledgeType: "recurring_risk", confidence: 0.88, relevanceScore: 0.85,
			scopeLayer: layer("operations"), dialecticTag: tag("risk"),
			sourceContext: ctx(`{"reason":"계약서 독소조항 대응 패턴"}`),
		},
		{
			content:       "예산 초과 시 대응 원칙: 1) 우선순위 재정렬(must-have vs nice-to-have), 2) 스코프 축소 제안, 3) 추가 예산 협상, 4) 최악의 경우 손절 판단. 감정이 아닌 숫자로 결정.",
			knowledgeType: "budget_judgment", confidence: 0.91, relevanceScore: 0.9,
			scopeLayer: layer("operations"), dialecticTag: tag("constraint"),
			sourceContext: ctx(`{"reason":"예산 초과 시 단계적 대응 원칙"}`),
		},
		{
			content:       "크리에이티브 방향 결정은 '클라이언트 니즈 우선'이지만 '우리만의 해석'을 반드시 포함. '클라이언트가 원하는 것'과 '클라이언트에게 필요한 것'을 구분하여 제안.",
			knowledgeType: "creative_direction", confidence: 0.93, relevanceScore: 0.9,
			scopeLayer: layer("creative"), dialecticTag: tag("quality"),
			sourceContext: ctx(`{"reason":"크리에이티브 방향 설정 원칙"}`),
		},
		{
			content:       "캠페인 전략 수립 시 '타겟 인사이트 → 핵심 메시지 → 크리에이티브 컨셉 → 실행 계획' 순서를 고수. 컨셉 없이 실행부터 들어가는 것을 경계.",
			knowledgeType: "campaign_strategy", confidence: 0.90, relevanceScore: 0.85,
			scopeLayer: layer("creative"), sourceContext: ctx(`{"reason":"캠페인 전략 수립 프로세스"}`),
		},
		{
			content:       "네이밍/슬로건 결정 시 3가지 기준: 1) 발음 용이성(한영 모두), 2) 의미 전달력, 3) 법적 보호 가능성. 후보 3-5개를 테스트 후 최종 결정.",
			knowledgeType: "naming_decision", confidence: 0.87, relevanceScore: 0.8,
			scopeLayer: layer("creative"), sourceContext: ctx(`{"reason":"네이밍/슬로건 결정 기준"}`),
		},
		{
			content:       "어워드 제출 전략: 칸/원쇼/클리오 등 티어1 어워드 위주로 집중. 수상 가능성 50% 미만이면 제출 안 함. 케이스 필름 퀄리티가 수상의 80%를 결정한다고 판단.",
			knowledgeType: "award_strategy", confidence: 0.88, relevanceScore: 0.8,
			scopeLayer: layer("creative"), sourceContext: ctx(`{"reason":"어워드 제출 전략 및 ROI 판단"}`),
		},
		{
			content:       "탤런트/모델 캐스팅 시 예산 대비 효과 분석 우선. A급 탤런트 비용이 전체 제작비의 40%를 초과하면 대안 탐색. 신인 발굴 통한 비용 절감 + 신선함 확보 전략 선호.",
			knowledgeType: "talent_casting", confidence: 0.86, relevanceScore: 0.8,
			scopeLayer: layer("creative"), dialecticTag: tag("constraint"),
			sourceContext: ctx(`{"reason":"탤런트 캐스팅 예산 대비 효과 판단"}`),
		},
		{
			content:       "PT(제안서) 구조: 1) 클라이언트 과제 재정의(공감), 2) 시장/소비자 인사이트, 3) 전략 방향, 4) 크리에이티브 컨셉, 5) 실행 계획, 6) 예산/일정. 6페이지 내 핵심 전달이 이상적.",
			knowledgeType: "pitch_execution", confidence: 0.93, relevanceScore: 0.9,
			scopeLayer: layer("pitch"), sourceContext: ctx(`{"reason":"제안서 표준 구조"}`),
		},
		{
			content:       "외주 업체 선정 기준: 1) 포트폴리오 퀄리티, 2) 일정 준수 이력, 3) 단가 합리성, 4) 커뮤니케이션 수월성. 신규 업체는 소규모 테스트 후 본계약.",
			knowledgeType: "vendor_selection", confidence: 0.89, relevanceScore: 0.85,
			scopeLayer: layer("operations"), sourceContext: ctx(`{"reason":"외주 업체 선정 기준 체계"}`),
		},
		{
			content:       "일정 변경 원칙: 클라이언트 요청에 의한 변경은 추가 비용 협상 필수. 내부 지연은 야근/주말 투입으로 만회. 마감 D-3일 이내 변경은 퀄리티 리스크로 간주.",
			knowledgeType: "schedule_change", confidence: 0.91, relevanceScore: 0.9,
			scopeLayer: layer("operations"), dialecticTag: tag("risk"),
			sourceContext: ctx(`{"reason":"일정 변경 시 비용/리스크 대응 원칙"}`),
		},
		{
			content:       "촬영 현장 의사결정 위임 체계: PD/CD에게 현장 재량권 부여하되, 예산 10% 이상 변동 또는 안전 이슈 발생 시 즉시 보고. 사후 보고보다 사전 상의를 중시.",
			knowledgeType: "workflow", confidence: 0.89, relevanceScore: 0.85,
			scopeLayer: layer("operations"), sourceContext: ctx(`{"reason":"현장 의사결정 위임 체계"}`),
		},
		{
			content:       "PT 차별화 전략: 경쟁사 분석 후 '남들이 안 하는 것'에 집중. 형식적 차별화(인터랙티브 PT, 영상 PT 등)도 적극 활용. 첫 5분에 승부를 건다.",
			knowledgeType: "pitch_execution", confidence: 0.88, relevanceScore: 0.85,
			scopeLayer: layer("pitch"), dialecticTag: tag("opportunity"),
			sourceContext: ctx(`{"reason":"PT 차별화 전략"}`),
		},
		{
			content:       "팀 커뮤니케이션 원칙: 중요한 결정은 카톡이 아닌 대면/화상으로. 문서화 필수(결정사항은 회의록으로 공유). '말로 한 약속'은 약속이 아니다.",
			knowledgeType: "communication_style", confidence: 0.92, relevanceScore: 0.9,
			sourceContext: ctx(`{"reason":"팀 내부 커뮤니케이션 원칙"}`),
		},
		{
			content:       "피드백 방식: '샌드위치 피드백'보다 직접적 피드백 선호. 좋은 점/나쁜 점 명확히 구분. 감정이 아닌 결과물 기준으로 피드백. 피드백 후 개선 방향 반드시 제시.",
			knowledgeType: "feedback_pattern", confidence: 0.88, relevanceScore: 0.85,
			sourceContext: ctx(`{"reason":"직접적 피드백 방식 선호 패턴"}`),
		},
		{
			content:       "이해관계자 조율 원칙: 클라이언트 내부 의사결정 구조를 먼저 파악. 실무자와 의사결정권자에게 다른 언어로 설명. 중간 보고를 자주 하여 '깜짝 쇼' 방지.",
			knowledgeType: "stakeholder_alignment", confidence: 0.90, relevanceScore: 0.85,
			scopeLayer: layer("pitch"), dialecticTag: tag("client_concern"),
			sourceContext: ctx(`{"reason":"이해관계자 소통 전략"}`),
		},
		{
			content:       "팀원 역량 판단 기준: 1) 자기 일의 범위를 스스로 정의할 수 있는가, 2) 문제 발생 시 해결책을 함께 가져오는가, 3) 마감을 지키는가. 이 3가지로 '프로'와 '주니어'를 구분.",
			knowledgeType: "judgment", confidence: 0.91, relevanceScore: 0.9,
			sourceContext: ctx(`{"reason":"팀원 역량 판단 3가지 기준"}`),
		},
		{
			content:       "협업 패턴: CD와는 크리에이티브 방향, EP와는 예산/계약, PD와는 일정/현장 중심으로 소통. 각 역할의 전문성을 존중하되 최종 결정권은 CEO에게 귀속.",
			knowledgeType: "collaboration_pattern", confidence: 0.93, relevanceScore: 0.9,
			sourceContext: ctx(`{"reason":"역할별 소통 패턴 총괄"}`),
		},
		{
			content:       "업계 교훈: '좋은 작품'과 '좋은 비즈니스'는 다르다. 수상작이 반드시 수익성이 좋은 것은 아님. 장기적으로는 수익이 있어야 좋은 작품도 만들 수 있다.",
			knowledgeType: "lesson_learned", confidence: 0.94, relevanceScore: 0.9,
			sourceContext: ctx(`{"reason":"수익성과 작품 퀄리티의 균형"}`),
		},
		{
			content:       "크리에이티브 에이전시 운영 노하우: 인력이 곧 자산. 핵심 인력 유지가 최우선. 프로젝트 실패보다 핵심 인력 이탈이 더 큰 리스크. 무리한 프로젝트 수주보다 팀 안정성 우선.",
			knowledgeType: "domain_expertise", confidence: 0.93, relevanceScore: 0.9,
			dialecticTag: tag("risk"), sourceContext: ctx(`{"reason":"에이전시 핵심 인력 관리 원칙"}`),
		},
		{
			content:       "CEO(김경신)와 CD(크리에이티브 디렉터) 간 소통: 크리에이티브 방향의 '큰 그림'은 CEO가 설정하고 세부 실행은 CD에게 위임. 의견 충돌 시 '클라이언트 가치' 기준으로 판단.",
			knowledgeType: "collaboration_pattern", confidence: 0.88, relevanceScore: 0.85,
			scopeLayer: layer("creative"), sourceContext: ctx(`{"reason":"CEO-CD 크리에이티브 소통 패턴"}`),
		},
		{
			content:       "CEO와 EP(총괄 프로듀서) 간 소통: 계약/정산/리소스는 EP 주도. CEO는 최종 승인 역할. 예산 10% 이상 변동 시 CEO 사전 승인 필수.",
			knowledgeType: "collaboration_pattern", confidence: 0.89, relevanceScore: 0.85,
			scopeLayer: layer("operations"), sourceContext: ctx(`{"reason":"CEO-EP 재무/계약 소통 패턴"}`),
		},
		{
			content:       "CEO와 PD(프로듀서/라인PD) 간 소통: 현장 조율과 일정 관리는 PD 자율. 주간 진행 상황 요약 보고 필수. 일정 지연 2일 이상 시 대응 방안과 함께 보고.",
			knowledgeType: "collaboration_pattern", confidence: 0.87, relevanceScore: 0.85,
			scopeLayer: layer("operations"), sourceContext: ctx(`{"reason":"CEO-PD 일정/현장 소통 패턴"}`),
		},
		{
			content:       "CEO와 AD(아트 디렉터/시니어AD) 간 소통: 비주얼 방향은 CD를 경유하되, 핵심 프로젝트는 CEO가 직접 디자인 QC. PPT 덱 퀄리티에 특히 높은 기준 적용.",
			knowledgeType: "collaboration_pattern", confidence: 0.85, relevanceScore: 0.8,
			scopeLayer: layer("creative"), sourceContext: ctx(`{"reason":"CEO-AD 디자인 QC 패턴"}`),
		},
		{
			content:       "CEO와 클라이언트 간 소통: 초기 관계 구축은 CEO가 직접. 안정화 후 담당 팀에 이관. 크리티컬 이슈(불만, 계약 변경) 시 CEO가 다시 전면에 등장.",
			knowledgeType: "collaboration_pattern", confidence: 0.91, relevanceScore: 0.9,
			scopeLayer: layer("pitch"), dialecticTag: tag("client_concern"),
			sourceContext: ctx(`{"reason":"CEO-클라이언트 관계 관리 패턴"}`),
		},
		{
			content:       "CEO와 외부 파트너(벤더) 간 소통: 핵심 벤더(촬영감독, 편집실)와는 CEO가 직접 관계 유지. 단가 협상은 EP에게 위임하되 최종 합의는 CEO 확인.",
			knowledgeType: "collaboration_pattern", confidence: 0.86, relevanceScore: 0.8,
			scopeLayer: layer("operations"), sourceContext: ctx(`{"reason":"CEO-벤더 관계 및 단가 협상 패턴"}`),
		},
		{
			content:       "팀 전체 커뮤니케이션 룰: 긴급도에 따라 채널 구분 — 긴급: 전화, 중요: 대면/화상, 일상: 메신저. 회의는 30분 이내, 결론 없는 회의는 금지.",
			knowledgeType: "communication_style", confidence: 0.90, relevanceScore: 0.85,
			sourceContext: ctx(`{"reason":"긴급도별 커뮤니케이션 채널 규칙"}`),
		},
		{
			content:       "프로젝트별 보고 체계: 주 1회 진행 상황 공유(전체), 이슈 발생 시 당일 내 보고(관련자), 월 1회 포트폴리오 + 재무 현황 리뷰(CEO+EP).",
			knowledgeType: "workflow", confidence: 0.88, relevanceScore: 0.85,
			scopeLayer: layer("operations"), sourceContext: ctx(`{"reason":"프로젝트 보고 주기 및 체계"}`),
		},
	}
}
