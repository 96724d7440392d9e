package normalize

// =============================================================================
// STATIC LOOKUP TABLES
// All tables are keyed by already-normalized text (width-folded, whitespace
// collapsed) and must not be mutated at runtime.
// =============================================================================

// Canonical account names. These are the labels the statement assembler
// classifies on; synonyms below resolve to one of these.
const (
	// Balance sheet
	AcctCash                  = "現金及び預金"
	AcctNotesReceivable       = "受取手形"
	AcctAccountsReceivable    = "売掛金"
	AcctTradeReceivables      = "受取手形及び売掛金"
	AcctSecurities            = "有価証券"
	AcctInventories           = "棚卸資産"
	AcctMerchandise           = "商品及び製品"
	AcctWorkInProcess         = "仕掛品"
	AcctRawMaterials          = "原材料及び貯蔵品"
	AcctOtherCurrentAssets    = "その他流動資産"
	AcctCurrentAssetsTotal    = "流動資産合計"
	AcctTangibleFixedAssets   = "有形固定資産"
	AcctIntangibleAssets      = "無形固定資産"
	AcctInvestmentsOther      = "投資その他の資産"
	AcctFixedAssetsTotal      = "固定資産合計"
	AcctDeferredAssets        = "繰延資産"
	AcctTotalAssets           = "資産合計"
	AcctNotesPayable          = "支払手形"
	AcctAccountsPayable       = "買掛金"
	AcctTradePayables         = "支払手形及び買掛金"
	AcctShortTermBorrowings   = "短期借入金"
	AcctAccruedPayables       = "未払金"
	AcctIncomeTaxesPayable    = "未払法人税等"
	AcctOtherCurrentLiab      = "その他流動負債"
	AcctCurrentLiabTotal      = "流動負債合計"
	AcctBonds                 = "社債"
	AcctLongTermBorrowings    = "長期借入金"
	AcctRetirementBenefitLiab = "退職給付に係る負債"
	AcctOtherFixedLiab        = "その他固定負債"
	AcctFixedLiabTotal        = "固定負債合計"
	AcctTotalLiabilities      = "負債合計"
	AcctCapitalStock          = "資本金"
	AcctCapitalSurplus        = "資本剰余金"
	AcctRetainedEarnings      = "利益剰余金"
	AcctTreasuryStock         = "自己株式"
	AcctShareholdersEquity    = "株主資本合計"
	AcctValuationAdjustments  = "その他の包括利益累計額合計"
	AcctNonControlling        = "非支配株主持分"
	AcctNetAssetsTotal        = "純資産合計"
	AcctLiabilitiesNetAssets  = "負債純資産合計"

	// Income statement
	AcctRevenue              = "売上高"
	AcctCostOfSales          = "売上原価"
	AcctGrossProfit          = "売上総利益"
	AcctSGA                  = "販売費及び一般管理費"
	AcctOperatingIncome      = "営業利益"
	AcctNonOperatingIncome   = "営業外収益"
	AcctInterestIncome       = "受取利息"
	AcctDividendIncome       = "受取配当金"
	AcctNonOperatingExpenses = "営業外費用"
	AcctInterestExpense      = "支払利息"
	AcctOrdinaryIncome       = "経常利益"
	AcctExtraordinaryIncome  = "特別利益"
	AcctExtraordinaryLoss    = "特別損失"
	AcctIncomeBeforeTax      = "税引前当期純利益"
	AcctCurrentIncomeTaxes   = "法人税、住民税及び事業税"
	AcctDeferredIncomeTaxes  = "法人税等調整額"
	AcctIncomeTaxes          = "法人税等"
	AcctNetIncome            = "当期純利益"

	// Cash flow statement
	AcctDepreciation    = "減価償却費"
	AcctCFOperating     = "営業活動によるキャッシュ・フロー"
	AcctCapex           = "有形固定資産の取得による支出"
	AcctCFInvesting     = "投資活動によるキャッシュ・フロー"
	AcctDividendsPaid   = "配当金の支払額"
	AcctCFFinancing     = "財務活動によるキャッシュ・フロー"
	AcctFXEffect        = "現金及び現金同等物に係る換算差額"
	AcctNetChangeInCash = "現金及び現金同等物の増減額"
	AcctCashBeginning   = "現金及び現金同等物の期首残高"
	AcctCashEnding      = "現金及び現金同等物の期末残高"

	// Document metadata
	MetaCompanyName  = "会社名"
	MetaIndustryCode = "業種コード"
	MetaPeriodStart  = "期首"
	MetaPeriodEnd    = "期末"
	MetaPeriod       = "会計期間"
	MetaEmployees    = "従業員数"
)

// accountSynonyms maps alternative spellings to canonical names.
var accountSynonyms = map[string]string{
	"現金預金":      AcctCash,
	"現金・預金":     AcctCash,
	"現預金":       AcctCash,
	"現金及預金":     AcctCash,
	"現金及び現金同等物": AcctCashEnding,

	"売掛金及び受取手形":   AcctTradeReceivables,
	"受取手形・売掛金":    AcctTradeReceivables,
	"受取手形及び売掛金合計": AcctTradeReceivables,
	"売上債権":        AcctTradeReceivables,
	"在庫":          AcctInventories,
	"たな卸資産":       AcctInventories,
	"棚卸資産合計":      AcctInventories,
	"商品":          AcctMerchandise,
	"製品":          AcctMerchandise,
	"商品・製品":       AcctMerchandise,
	"原材料":         AcctRawMaterials,
	"その他の流動資産":    AcctOtherCurrentAssets,
	"流動資産計":       AcctCurrentAssetsTotal,
	"有形固定資産合計":    AcctTangibleFixedAssets,
	"無形固定資産合計":    AcctIntangibleAssets,
	"投資その他の資産合計":  AcctInvestmentsOther,
	"固定資産計":       AcctFixedAssetsTotal,
	"資産の部合計":      AcctTotalAssets,
	"総資産":         AcctTotalAssets,
	"資産合計額":       AcctTotalAssets,
	"資産総額":        AcctTotalAssets,

	"買掛金及び支払手形":   AcctTradePayables,
	"支払手形・買掛金":    AcctTradePayables,
	"仕入債務":        AcctTradePayables,
	"短期借入金等":      AcctShortTermBorrowings,
	"その他の流動負債":    AcctOtherCurrentLiab,
	"流動負債計":       AcctCurrentLiabTotal,
	"長期借入金等":      AcctLongTermBorrowings,
	"その他の固定負債":    AcctOtherFixedLiab,
	"固定負債計":       AcctFixedLiabTotal,
	"負債の部合計":      AcctTotalLiabilities,
	"総負債":         AcctTotalLiabilities,
	"負債計":         AcctTotalLiabilities,
	"株主資本計":       AcctShareholdersEquity,
	"純資産の部合計":     AcctNetAssetsTotal,
	"純資産":         AcctNetAssetsTotal,
	"自己資本":        AcctNetAssetsTotal,
	"純資産計":        AcctNetAssetsTotal,
	"負債及び純資産合計":   AcctLiabilitiesNetAssets,
	"負債・純資産合計":    AcctLiabilitiesNetAssets,
	"負債純資産の部合計":   AcctLiabilitiesNetAssets,
	"負債及び純資産の部合計": AcctLiabilitiesNetAssets,

	"売上":           AcctRevenue,
	"売上収益":         AcctRevenue,
	"営業収益":         AcctRevenue,
	"売上金額":         AcctRevenue,
	"純売上高":         AcctRevenue,
	"売上高合計":        AcctRevenue,
	"売上原価合計":       AcctCostOfSales,
	"粗利益":          AcctGrossProfit,
	"粗利":           AcctGrossProfit,
	"売上総損益":        AcctGrossProfit,
	"売上総利益金額":      AcctGrossProfit,
	"販管費":          AcctSGA,
	"販売費・一般管理費":    AcctSGA,
	"販売費及び一般管理費合計": AcctSGA,
	"営業損益":         AcctOperatingIncome,
	"営業利益金額":       AcctOperatingIncome,
	"営業外収益合計":      AcctNonOperatingIncome,
	"営業外費用合計":      AcctNonOperatingExpenses,
	"受取利息及び配当金":    AcctInterestIncome,
	"支払利息及び割引料":    AcctInterestExpense,
	"経常損益":         AcctOrdinaryIncome,
	"経常利益金額":       AcctOrdinaryIncome,
	"特別利益合計":       AcctExtraordinaryIncome,
	"特別損失合計":       AcctExtraordinaryLoss,
	"税引前当期純損益":     AcctIncomeBeforeTax,
	"税金等調整前当期純利益":  AcctIncomeBeforeTax,
	"税引前利益":        AcctIncomeBeforeTax,
	"法人税,住民税及び事業税": AcctCurrentIncomeTaxes,
	"法人税住民税及び事業税":  AcctCurrentIncomeTaxes,
	"法人税等合計":       AcctIncomeTaxes,
	"当期純損益":        AcctNetIncome,
	"当期利益":         AcctNetIncome,
	"親会社株主に帰属する当期純利益": AcctNetIncome,

	"減価償却費及び償却費":          AcctDepreciation,
	"営業活動によるキャッシュフロー":     AcctCFOperating,
	"営業キャッシュ・フロー":         AcctCFOperating,
	"営業キャッシュフロー":          AcctCFOperating,
	"営業CF":                AcctCFOperating,
	"営業活動によるCF":           AcctCFOperating,
	"固定資産の取得による支出":        AcctCapex,
	"投資活動によるキャッシュフロー":     AcctCFInvesting,
	"投資キャッシュ・フロー":         AcctCFInvesting,
	"投資キャッシュフロー":          AcctCFInvesting,
	"投資CF":                AcctCFInvesting,
	"投資活動によるCF":           AcctCFInvesting,
	"配当金の支払":              AcctDividendsPaid,
	"財務活動によるキャッシュフロー":     AcctCFFinancing,
	"財務キャッシュ・フロー":         AcctCFFinancing,
	"財務キャッシュフロー":          AcctCFFinancing,
	"財務CF":                AcctCFFinancing,
	"財務活動によるCF":           AcctCFFinancing,
	"現金及び現金同等物の増加額":       AcctNetChangeInCash,
	"現金及び現金同等物の減少額":       AcctNetChangeInCash,
	"現金及び現金同等物の増減額(△は減少)": AcctNetChangeInCash,
	"現金及び現金同等物の増加額(減少)":   AcctNetChangeInCash,
	"現金及び現金同等物期首残高":       AcctCashBeginning,
	"現金及び現金同等物の期首残高合計":    AcctCashBeginning,
	"現金及び現金同等物期末残高":       AcctCashEnding,
	"現金及び現金同等物の期末残高合計":    AcctCashEnding,

	"社名":      MetaCompanyName,
	"商号":      MetaCompanyName,
	"企業名":     MetaCompanyName,
	"会社名称":    MetaCompanyName,
	"業種":      MetaIndustryCode,
	"業種番号":    MetaIndustryCode,
	"業種区分":    MetaIndustryCode,
	"期首日":     MetaPeriodStart,
	"会計期間開始日": MetaPeriodStart,
	"事業年度開始日": MetaPeriodStart,
	"期末日":     MetaPeriodEnd,
	"決算日":     MetaPeriodEnd,
	"会計期間終了日": MetaPeriodEnd,
	"事業年度終了日": MetaPeriodEnd,
	"事業年度":    MetaPeriod,
	"対象期間":    MetaPeriod,
	"従業員":     MetaEmployees,
	"従業員数(人)": MetaEmployees,
	"期末従業員数":  MetaEmployees,
}

// eraStartYears is the Gregorian year in which era-year 1 (元年) falls.
var eraStartYears = map[string]int{
	"明治": 1868,
	"大正": 1912,
	"昭和": 1926,
	"平成": 1989,
	"令和": 2019,
}

// eraLetters maps the one-letter era abbreviations used in exports
// ("R6.3.31") to the era names above.
var eraLetters = map[string]string{
	"M": "明治",
	"T": "大正",
	"S": "昭和",
	"H": "平成",
	"R": "令和",
}

// industryNames is the TSE 33-sector classification.
var industryNames = map[string]string{
	"0050": "水産・農林業",
	"1050": "鉱業",
	"2050": "建設業",
	"3050": "食料品",
	"3100": "繊維製品",
	"3150": "パルプ・紙",
	"3200": "化学",
	"3250": "医薬品",
	"3300": "石油・石炭製品",
	"3350": "ゴム製品",
	"3400": "ガラス・土石製品",
	"3450": "鉄鋼",
	"3500": "非鉄金属",
	"3550": "金属製品",
	"3600": "機械",
	"3650": "電気機器",
	"3700": "輸送用機器",
	"3750": "精密機器",
	"3800": "その他製品",
	"4050": "電気・ガス業",
	"5050": "陸運業",
	"5100": "海運業",
	"5150": "空運業",
	"5200": "倉庫・運輸関連業",
	"5250": "情報・通信業",
	"6050": "卸売業",
	"6100": "小売業",
	"7050": "銀行業",
	"7100": "証券、商品先物取引業",
	"7150": "保険業",
	"7200": "その他金融業",
	"8050": "不動産業",
	"9050": "サービス業",
}

// UnknownIndustry is returned for unmapped industry codes.
const UnknownIndustry = "unknown"
