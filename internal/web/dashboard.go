// Package web serves the monitoring dashboard.
package web

import (
	"net/http"
)

// ServeDashboard serves the embedded dashboard page
func ServeDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>allyanonimiser</title>
<style>
  body { font-family: -apple-system, sans-serif; margin: 0; background: #0d1117; color: #c9d1d9; }
  header { padding: 16px 24px; background: #161b22; border-bottom: 1px solid #30363d; }
  header h1 { margin: 0; font-size: 18px; }
  #status { font-size: 13px; color: #8b949e; }
  #status.connected { color: #3fb950; }
  main { padding: 24px; }
  table { width: 100%; border-collapse: collapse; font-size: 13px; }
  th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #21262d; }
  th { color: #8b949e; font-weight: 600; }
  .type-pill { display: inline-block; padding: 1px 8px; margin: 1px; border-radius: 10px; background: #1f6feb33; color: #58a6ff; }
</style>
</head>
<body>
<header>
  <h1>allyanonimiser <span id="status">connecting…</span></h1>
</header>
<main>
  <table>
    <thead>
      <tr><th>Time</th><th>Event</th><th>Length</th><th>Entities</th><th>Types</th><th>ms</th></tr>
    </thead>
    <tbody id="events"></tbody>
  </table>
</main>
<script>
  const status = document.getElementById('status');
  const events = document.getElementById('events');
  const proto = location.protocol === 'https:' ? 'wss' : 'ws';
  const ws = new WebSocket(proto + '://' + location.host + '/ws');

  ws.onopen = () => { status.textContent = 'connected'; status.className = 'connected'; };
  ws.onclose = () => { status.textContent = 'disconnected'; status.className = ''; };

  ws.onmessage = (msg) => {
    const event = JSON.parse(msg.data);
    if (event.type !== 'pii_detection' && event.type !== 'anonymization') return;
    const d = event.data;
    const row = document.createElement('tr');
    const types = Object.entries(d.entity_types || {})
      .map(([t, n]) => '<span class="type-pill">' + t + ' ×' + n + '</span>')
      .join(' ');
    row.innerHTML =
      '<td>' + new Date(event.timestamp).toLocaleTimeString() + '</td>' +
      '<td>' + event.type + '</td>' +
      '<td>' + d.text_length + '</td>' +
      '<td>' + (d.entity_count ?? d.item_count) + '</td>' +
      '<td>' + types + '</td>' +
      '<td>' + (d.processing_ms || 0).toFixed(1) + '</td>';
    events.prepend(row);
    while (events.children.length > 100) events.removeChild(events.lastChild);
  };
</script>
</body>
</html>
`
