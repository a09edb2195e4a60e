package config

// defaultUniverse is a curated list of liquid NSE symbols in Yahoo
// Finance format, used when no universe is configured.
var defaultUniverse = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS",
	"HINDUNILVR.NS", "ITC.NS", "SBIN.NS", "BHARTIARTL.NS", "KOTAKBANK.NS",
	"LT.NS", "AXISBANK.NS", "ASIANPAINT.NS", "MARUTI.NS", "SUNPHARMA.NS",
	"TITAN.NS", "BAJFINANCE.NS", "WIPRO.NS", "ULTRACEMCO.NS", "NESTLEIND.NS",
	"HCLTECH.NS", "POWERGRID.NS", "NTPC.NS", "TATAMOTORS.NS", "TATASTEEL.NS",
	"BAJAJFINSV.NS", "ONGC.NS", "ADANIPORTS.NS", "COALINDIA.NS", "M&M.NS",
	"TECHM.NS", "DIVISLAB.NS", "DRREDDY.NS", "CIPLA.NS", "APOLLOHOSP.NS",
	"EICHERMOT.NS", "BRITANNIA.NS", "GRASIM.NS", "HEROMOTOCO.NS", "BPCL.NS",
	"INDUSINDBK.NS", "HINDALCO.NS", "JSWSTEEL.NS", "ADANIENT.NS", "TATACONSUM.NS",
	"SHREECEM.NS", "PIDILITIND.NS", "SIEMENS.NS", "DABUR.NS", "GODREJCP.NS",
	"HDFCLIFE.NS", "SBILIFE.NS", "BAJAJ-AUTO.NS", "VEDL.NS", "DLF.NS",
	"AMBUJACEM.NS", "BANKBARODA.NS", "GAIL.NS", "IOC.NS", "TORNTPHARM.NS",
	"CHOLAFIN.NS", "INDIGO.NS", "PNB.NS", "ADANIGREEN.NS", "BANDHANBNK.NS",
	"BERGEPAINT.NS", "BEL.NS", "BIOCON.NS", "BOSCHLTD.NS", "CANBK.NS",
	"COLPAL.NS", "CONCOR.NS", "CUMMINSIND.NS", "GODREJPROP.NS", "HAL.NS",
	"HAVELLS.NS", "ICICIPRULI.NS", "INDUSTOWER.NS", "IRCTC.NS", "JINDALSTEL.NS",
	"JUBLFOOD.NS", "LICHSGFIN.NS", "LUPIN.NS", "MARICO.NS", "MOTHERSON.NS",
	"MRF.NS", "MUTHOOTFIN.NS", "NAUKRI.NS", "NMDC.NS", "OFSS.NS",
	"PAGEIND.NS", "PERSISTENT.NS", "PETRONET.NS", "PFC.NS", "PIIND.NS",
	"RECLTD.NS", "SAIL.NS", "SRF.NS", "TATAPOWER.NS", "TVSMOTOR.NS",
	"MPHASIS.NS", "UPL.NS", "VOLTAS.NS", "ALKEM.NS", "ACC.NS",
}
