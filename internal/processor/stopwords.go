package processor

// portugueseStopwords 固定的葡萄牙语停用词表，进程内只读
var portugueseStopwords = map[string]struct{}{
	"de": {}, "a": {}, "o": {}, "que": {}, "e": {}, "do": {}, "da": {}, "em": {}, "um": {},
	"para": {}, "é": {}, "com": {}, "não": {}, "uma": {}, "os": {}, "no": {}, "se": {},
	"na": {}, "por": {}, "mais": {}, "as": {}, "dos": {}, "como": {}, "mas": {}, "foi": {},
	"ao": {}, "ele": {}, "das": {}, "tem": {}, "à": {}, "seu": {}, "sua": {}, "ou": {},
	"ser": {}, "quando": {}, "muito": {}, "há": {}, "nos": {}, "já": {}, "está": {},
	"eu": {}, "também": {}, "só": {}, "pelo": {}, "pela": {}, "até": {}, "isso": {},
	"ela": {}, "entre": {}, "depois": {}, "sem": {}, "mesmo": {}, "aos": {}, "seus": {},
	"quem": {}, "nas": {}, "me": {}, "esse": {}, "eles": {}, "estão": {}, "você": {},
	"tinha": {}, "foram": {}, "essa": {}, "num": {}, "nem": {}, "suas": {}, "meu": {},
	"às": {}, "minha": {}, "têm": {}, "numa": {}, "pelos": {}, "elas": {}, "havia": {},
	"seja": {}, "qual": {}, "será": {}, "nós": {}, "tenho": {}, "lhe": {}, "deles": {},
	"essas": {}, "esses": {}, "pelas": {}, "este": {}, "dele": {}, "tu": {}, "te": {},
	"vocês": {}, "vos": {}, "lhes": {}, "meus": {}, "minhas": {}, "teu": {}, "tua": {},
	"teus": {}, "tuas": {}, "nosso": {}, "nossa": {}, "nossos": {}, "nossas": {},
	"dela": {}, "delas": {}, "esta": {}, "estes": {}, "estas": {}, "aquele": {},
	"aquela": {}, "aqueles": {}, "aquelas": {}, "isto": {}, "aquilo": {}, "estou": {},
	"estamos": {}, "estive": {}, "esteve": {}, "estivemos": {}, "estiveram": {},
	"estava": {}, "estávamos": {}, "estavam": {}, "estivera": {}, "estivéramos": {},
	"esteja": {}, "estejamos": {}, "estejam": {}, "estivesse": {}, "estivéssemos": {},
	"estivessem": {}, "estiver": {}, "estivermos": {}, "estiverem": {}, "hei": {},
	"havemos": {}, "hão": {}, "houve": {}, "houvemos": {}, "houveram": {}, "houvera": {},
	"houvéramos": {}, "haja": {}, "hajamos": {}, "hajam": {}, "houvesse": {},
	"houvéssemos": {}, "houvessem": {}, "houver": {}, "houvermos": {}, "houverem": {},
	"houverei": {}, "houverá": {}, "houveremos": {}, "houverão": {}, "houveria": {},
	"houveríamos": {}, "houveriam": {}, "sou": {}, "somos": {}, "são": {}, "era": {},
	"éramos": {}, "eram": {}, "fui": {}, "fomos": {}, "fora": {}, "fôramos": {},
	"sejamos": {}, "sejam": {}, "fosse": {}, "fôssemos": {}, "fossem": {}, "for": {},
	"formos": {}, "forem": {}, "serei": {}, "seremos": {}, "serão": {}, "seria": {},
	"seríamos": {}, "seriam": {}, "temos": {}, "tém": {}, "tínhamos": {}, "tinham": {},
	"tive": {}, "teve": {}, "tivemos": {}, "tiveram": {}, "tivera": {}, "tivéramos": {},
	"tenha": {}, "tenhamos": {}, "tenham": {}, "tivesse": {}, "tivéssemos": {},
	"tivessem": {}, "tiver": {}, "tivermos": {}, "tiverem": {}, "terei": {}, "terá": {},
	"teremos": {}, "terão": {}, "teria": {}, "teríamos": {}, "teriam": {},
}

// IsStopword 判断 token 是否在停用词表中（token 需已小写）
func IsStopword(token string) bool {
	_, ok := portugueseStopwords[token]
	return ok
}
